package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/infrastructure/cache"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/infrastructure/database/postgres"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/infrastructure/integrator/google"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/infrastructure/integrator/google/googleclient"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/infrastructure/integrator/meta"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/infrastructure/integrator/meta/metaclient"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/infrastructure/messaging/rabbitmq"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/infrastructure/migration"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/infrastructure/repository"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/api"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/config"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/scheduler"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/usecases/credentialing"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/usecases/governing"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/usecases/ingesting"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/log"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	log.Setup(cfg.App.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	if cfg.Database.RunMigrations {
		if err := migration.Up(ctx, pgConn.DB); err != nil {
			logrus.WithError(err).Fatal("Erro ao aplicar migrações")
		}
	}

	credentialRepo := repository.NewCredentialRepository(pgConn)
	performanceRepo := repository.NewPerformanceRepository(pgConn)

	credentialService := credentialing.NewService(credentialRepo, cfg)

	metaIntegrator := meta.New(metaclient.NewClient(cfg))
	googleIntegrator := google.New(googleclient.NewClient(cfg))

	pipeline, err := ingesting.NewPipeline(
		credentialService,
		performanceRepo,
		cfg.PerformanceSync.MaxConcurrentJobs,
		metaIntegrator,
		googleIntegrator,
	)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao montar o pipeline de ingestão")
	}

	governor, closeGovernance := newGovernor(ctx, cfg)

	// Inicia o agendador em background
	syncService := scheduler.NewPerformanceSyncService(pipeline, cfg)
	if err := syncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de sincronização de performance")
	} else {
		logrus.Info("Agendador de sincronização de performance iniciado com sucesso")
	}

	server, err := api.New(cfg, api.Dependencies{
		DB:         pgConn,
		Governance: governor,
		Metrics:    performanceRepo,
		Ingestion:  syncService,
	})
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}

	// cancela o agendador e a persistência antes de fechar as conexões
	cancel()
	closeGovernance()
}

// newGovernor monta o governador com os sinks e a persistência opcionais.
// A função de limpeza espera o último snapshot, então só deve rodar depois do cancel.
func newGovernor(ctx context.Context, cfg *config.Config) (*governing.Governor, func()) {
	governanceConfig, err := governing.FromSettings(cfg.Governance)
	if err != nil {
		logrus.WithError(err).Fatal("Configuração de governança inválida")
	}

	location, err := time.LoadLocation(cfg.Governance.Timezone)
	if err != nil {
		logrus.WithError(err).Warnf("Fuso horário %q inválido, usando UTC", cfg.Governance.Timezone)
		location = time.UTC
	}

	opts := []governing.Option{
		governing.WithLocation(location),
		governing.WithAlertLogSize(cfg.Governance.AlertLogSize),
	}
	sinks := []governing.AlertSink{governing.LogSink{}}
	var cleanups []func()

	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL)
		if err != nil {
			logrus.WithError(err).Warn("RabbitMQ indisponível, alertas apenas no log")
		} else if publisher, err := rabbitmq.NewAlertPublisher(conn.Channel, cfg.RabbitMQ.AlertQueue); err != nil {
			logrus.WithError(err).Warn("Erro ao declarar a fila de alertas")
			_ = conn.Close()
		} else {
			sinks = append(sinks, publisher)
			cleanups = append(cleanups, func() { _ = conn.Close() })
		}
	}
	opts = append(opts, governing.WithSinks(sinks...))

	var store *cache.GovernanceStore
	if cfg.Redis.Addr != "" {
		client := cache.NewClient(cfg.Redis)
		if err := cache.Ping(ctx, client); err != nil {
			logrus.WithError(err).Warn("Redis indisponível, estado de governança apenas em memória")
			_ = client.Close()
		} else {
			store = cache.NewGovernanceStore(client, cfg.Redis.Key)
			opts = append(opts, governing.WithStore(store))
			cleanups = append(cleanups, func() { _ = client.Close() })
		}
	}

	governor, err := governing.New(governanceConfig, opts...)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao criar o governador de uso")
	}

	persisted := make(chan struct{})
	if store != nil {
		if err := governor.Restore(ctx); err != nil {
			logrus.WithError(err).Warn("Erro ao restaurar o estado de governança")
		}
		go func() {
			defer close(persisted)
			governor.RunPersistence(ctx, cfg.Governance.SnapshotInterval)
		}()
	} else {
		close(persisted)
	}

	logrus.WithFields(logrus.Fields{
		"daily_token_limit": governanceConfig.DailyTokenLimit,
		"daily_cost_limit":  governanceConfig.DailyCostLimit.String(),
		"timezone":          location.String(),
		"persistent":        store != nil,
	}).Info("Governador de uso iniciado")

	return governor, func() {
		<-persisted
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
