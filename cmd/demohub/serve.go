package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"demohub/internal/car"
	"demohub/internal/config"
	"demohub/internal/database"
	"demohub/internal/house"
	"demohub/internal/httpapi"
	"demohub/internal/laptop"
	"demohub/internal/logger"
	"demohub/internal/market"
	"demohub/internal/mesh"
	"demohub/internal/mqtt"
	"demohub/internal/repository"
	"demohub/internal/search"
	"demohub/internal/service"
	"demohub/internal/session"
	"demohub/internal/store"
	"demohub/internal/thermo"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// latestTTL bounds how long a stopped feed's last quote stays readable.
const latestTTL = time.Minute

func latestKey(sessionID string) string { return "demohub:market:latest:" + sessionID }

func newRand() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) }

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "demohub")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Redis 可选：不可用时回退到内存 KV / 内存快照
	var redisClient *redis.Client
	var kv store.KV = store.NewMemoryKV()
	if cfg.RedisEnabled {
		c := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err := c.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			log.Warn("Redis enabled but unreachable, falling back to memory", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = c.Close()
		} else {
			redisClient = c
			kv = store.NewRedisKV(c)
			log.Info("Redis enabled for demohub", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// DB 可选：未就绪时使用内存 repo
	var db *sql.DB
	var designs car.DesignStore = repository.NewMemoryCarDesignsRepo()
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(ctx, &cfg.Database); err != nil {
			log.Warn("DB enabled but connection failed, falling back to memory", zap.Error(err))
		} else {
			repo := repository.NewPostgresCarDesignsRepo(d)
			if err := repo.EnsureSchema(ctx); err != nil {
				log.Warn("car_designs schema setup failed, falling back to memory", zap.Error(err))
				_ = d.Close()
			} else {
				db = d
				designs = repo
				log.Info("DB enabled for demohub")
			}
		}
	}

	var mqttClient *mqtt.Client
	if cfg.MQTTEnabled {
		if c, err := mqtt.NewClient(&cfg.MQTT, log); err != nil {
			log.Warn("MQTT enabled but connection failed, ticks will not be published", zap.Error(err))
		} else {
			mqttClient = c
		}
	}

	products, err := search.LoadProducts(cfg.Search.ProductsFile)
	if err != nil {
		return err
	}

	var converter mesh.Converter
	if cfg.Mesh.ConverterURL != "" {
		converter = mesh.NewHTTPConverter(cfg.Mesh.ConverterURL, cfg.Mesh.Timeout, cfg.Mesh.Retries, log)
	}

	editors := session.NewRegistry("house", func(id string) *house.Editor {
		var history house.SnapshotStore = house.NewMemorySnapshotStore()
		if redisClient != nil {
			history = store.NewRedisSnapshotStore(redisClient, cfg.House.HistoryKeyPrefix+id, cfg.House.HistoryTTL)
		}
		return house.NewEditor(history, newRand(), log.With(zap.String("session_id", id)))
	}, log)
	studios := session.NewRegistry("car", func(id string) *car.Studio {
		return car.NewStudio(id, cfg.Car.Budget, designs, newRand(), log)
	}, log)
	feeds := session.NewRegistry("market", func(id string) *market.Feed {
		sinks := []market.Sink{market.NewLatestSink(kv, latestKey(id), latestTTL)}
		if redisClient != nil && cfg.Market.Stream != "" {
			sinks = append(sinks, market.NewStreamSink(redisClient, cfg.Market.Stream, cfg.Market.StreamMaxLen))
		}
		if mqttClient != nil && cfg.Market.Topic != "" {
			sinks = append(sinks, market.NewMQTTSink(mqttClient, cfg.Market.Topic, cfg.MQTT.QoS))
		}
		mc := market.Config{
			Interval:  cfg.Market.Interval,
			Capacity:  cfg.Market.Capacity,
			StartBTC:  cfg.Market.StartBTC,
			StartETH:  cfg.Market.StartETH,
			Portfolio: market.Portfolio{Cash: cfg.Market.Cash, BTC: cfg.Market.BTC, ETH: cfg.Market.ETH},
		}
		return market.NewFeed(mc, newRand(), log.With(zap.String("session_id", id)), sinks...)
	}, log)
	boxes := session.NewRegistry("search", func(string) *search.Box {
		return search.NewBox(products)
	}, log)
	games := session.NewRegistry("laptop", func(id string) *laptop.Game {
		return laptop.NewGame(laptop.DefaultTiming(), newRand(), log.With(zap.String("session_id", id)))
	}, log)
	viewers := session.NewRegistry("viewer", func(id string) *mesh.Viewer {
		return mesh.NewViewer(converter, mesh.Options{MaxBytes: cfg.Mesh.MaxBytes, Scale: cfg.Mesh.Scale}, log.With(zap.String("session_id", id)))
	}, log)
	panels := session.NewRegistry("thermo", func(string) *thermo.Panel {
		return thermo.NewPanel()
	}, log)

	// 空闲会话回收：关闭的标签页不会发 DELETE
	reapers := []func(context.Context, time.Duration, time.Duration){
		editors.RunReaper, studios.RunReaper, feeds.RunReaper, boxes.RunReaper,
		games.RunReaper, viewers.RunReaper, panels.RunReaper,
	}
	for _, run := range reapers {
		go run(ctx, cfg.Session.ReapInterval, cfg.Session.IdleTimeout)
	}

	router := httpapi.NewRouter(log)
	router.RegisterHouseRoutes(httpapi.NewHouseHandler(editors, log))
	router.RegisterCarRoutes(httpapi.NewCarHandler(studios, log))
	router.RegisterMarketRoutes(httpapi.NewMarketHandler(ctx, feeds, kv, latestKey, log))
	router.RegisterSearchRoutes(httpapi.NewSearchHandler(boxes, log))
	router.RegisterLaptopRoutes(httpapi.NewLaptopHandler(ctx, games, log))
	router.RegisterViewerRoutes(httpapi.NewViewerHandler(viewers, cfg.Mesh.MaxBytes, log))
	router.RegisterThermoRoutes(httpapi.NewThermoHandler(panels, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var serveErr error
	select {
	case <-sigCh:
	case <-ctx.Done():
	case serveErr = <-errCh:
		if serveErr != nil {
			log.Error("HTTP server failed", zap.Error(serveErr))
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)

	closeErr := errors.Join(
		editors.Close(),
		studios.Close(),
		feeds.Close(),
		boxes.Close(),
		games.Close(),
		viewers.Close(),
		panels.Close(),
	)
	if closeErr != nil {
		log.Warn("session teardown reported errors", zap.Error(closeErr))
	}
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
	return serveErr
}
