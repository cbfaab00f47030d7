package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justinas/alice"
	"github.com/sirupsen/logrus"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/api/handler"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/api/handler/router"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/config"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/middleware"
)

type Server struct {
	httpServer *http.Server
}

// Dependencies reúne o que as rotas precisam
type Dependencies struct {
	DB         handler.Pinger
	Governance handler.Governance
	Metrics    handler.PerformanceReader
	Ingestion  handler.IngestionTrigger
}

func New(config *config.Config, deps Dependencies) (*Server, error) {
	if deps.Governance == nil || deps.Metrics == nil || deps.Ingestion == nil {
		return nil, fmt.Errorf("api: missing dependencies")
	}

	secret := config.Auth.Secret

	rt := router.New(
		router.WithRoutes(handler.Healthcheck(deps.DB)...),
		router.WithRoutes(handler.Orchestration(deps.Governance, secret)...),
		router.WithRoutes(handler.Performance(deps.Metrics, secret)...),
		router.WithRoutes(handler.Ingestion(deps.Ingestion, secret)...),
	)

	// autenticação fica por rota; só healthcheck e métricas são públicos
	middlewares := []alice.Constructor{
		middleware.LogPanicMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.Cors(config.Server.AllowedOrigins),
	}

	handler := alice.New(middlewares...).Then(rt)

	srv := &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 2 * time.Second,
		},
	}

	return srv, nil
}

// Handler expõe a cadeia completa, usado nos testes
func (s Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s Server) Run(ctx context.Context) error {
	go func() {
		logrus.WithFields(logrus.Fields{
			"address": s.httpServer.Addr,
		}).Info("Servidor iniciando")

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("Erro durante a execução do servidor")
		}
	}()

	// Canal para aguardar sinais de término
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	// Aguardar pelo sinal ou pelo cancelamento do contexto
	select {
	case <-done:
		logrus.Info("Sinal de interrupção recebido")
	case <-ctx.Done():
		logrus.Info("Contexto de aplicação cancelado")
	}

	// Define timeout para desligamento
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Log de início do desligamento
	logrus.WithFields(logrus.Fields{
		"timeout": "15s",
	}).Info("Iniciando desligamento gracioso do servidor")

	if err := s.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Erro durante o desligamento do servidor")
		return err
	}

	logrus.Info("Servidor desligado com sucesso")
	return nil
}

func (s Server) Shutdown(ctx context.Context) error {
	logrus.Info("Executando operações de limpeza antes do desligamento")

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		return err
	}

	logrus.Info("Servidor HTTP desligado com sucesso")
	return nil
}
