package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/flemzord/warelay/internal/channel"
	"github.com/flemzord/warelay/internal/config"
	"github.com/flemzord/warelay/internal/conversation"
	"github.com/flemzord/warelay/internal/core"
	"github.com/flemzord/warelay/internal/cron"
	"github.com/flemzord/warelay/internal/gateway"
	"github.com/flemzord/warelay/internal/metrics"
	"github.com/flemzord/warelay/internal/relay"
	"github.com/flemzord/warelay/modules/channel/whatsapp"
	"github.com/flemzord/warelay/modules/provider/workersai"
	redisstore "github.com/flemzord/warelay/modules/store/redis"
)

// Service names registered on the AppContext while wiring.
const (
	ServiceStore    = "conversation.store"
	ServiceChannel  = "channel"
	ServiceMetrics  = "metrics"
	ServiceRegistry = "metrics.registry"
)

const serviceName = "warelay"

// Deps overrides pieces of the wiring. Zero values build the production
// components from the configuration.
type Deps struct {
	// Channel replaces the WhatsApp channel.
	Channel channel.Channel

	// TracerProvider defaults to a no-op provider.
	TracerProvider trace.TracerProvider
}

// Build assembles every module described by cfg into an unstarted App.
// Modules are appended in dependency order: store, provider, relay,
// channel, then the optional gateway and scheduler.
func Build(cfg *config.Config, appCtx *core.AppContext, deps Deps) (*core.App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	appCtx.RegisterService(ServiceRegistry, reg)
	appCtx.RegisterService(ServiceMetrics, m)

	tp := deps.TracerProvider
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	tracer := tp.Tracer(serviceName)

	application := core.NewApp(appCtx)

	store, err := buildStore(cfg, appCtx)
	if err != nil {
		return nil, err
	}
	if mod, ok := store.(core.Module); ok {
		application.AppendModule(mod)
	}

	aiCtx := appCtx.ForModule(workersai.ModuleID)
	ai := workersai.New(workersai.Config{
		URL:          cfg.AI.URL,
		Token:        cfg.AI.Token,
		SystemPrompt: cfg.AI.SystemPrompt,
		Timeout:      cfg.AI.Timeout,
	}, aiCtx.Logger, workersai.WithMetrics(m), workersai.WithTracer(tracer))
	application.AppendModule(ai)

	ch := deps.Channel
	if ch == nil {
		waCtx := appCtx.ForModule(whatsapp.ModuleID)
		wa, err := whatsapp.New(whatsapp.Config{
			SessionDir: cfg.WhatsApp.SessionDir,
			PrintQR:    cfg.WhatsApp.PrintQR,
		}, waCtx.Logger, whatsapp.WithMetrics(m))
		if err != nil {
			return nil, err
		}
		ch = wa
	}
	appCtx.RegisterService(ServiceChannel, ch)

	r, err := relay.New(relay.Config{
		Store:     store,
		Responder: ai,
		Sender:    ch,
		Logger:    appCtx.ForModule(relay.ModuleID).Logger,
		Metrics:   m,
		Tracer:    tracer,
		Replies:   relay.UniformReplies(cfg.Relay.Apology),
		Serialize: cfg.Relay.Serialize,
	})
	if err != nil {
		return nil, fmt.Errorf("building relay: %w", err)
	}
	ch.SetInbox(r.Submit)
	application.AppendModule(r)
	application.AppendModule(ch)

	probes := healthProbes(store, ch)

	if cfg.Gateway.Addr != "" {
		gw, err := gateway.New(gateway.Config{Bind: cfg.Gateway.Addr},
			appCtx.ForModule(gateway.ModuleID).Logger, gateway.Checks(probes), reg)
		if err != nil {
			return nil, err
		}
		application.AppendModule(gw)
	}

	if cfg.Heartbeat.Schedule != "" {
		cronCtx := appCtx.ForModule(cron.ModuleID)
		sched := cron.NewScheduler(cronCtx.Logger)
		if err := sched.RegisterJob(&cron.HealthProbeJob{
			Probes:       probes,
			Metrics:      m,
			Logger:       cronCtx.Logger,
			ScheduleExpr: cfg.Heartbeat.Schedule,
		}); err != nil {
			return nil, err
		}
		application.AppendModule(sched)
	}

	return application, nil
}

func buildStore(cfg *config.Config, appCtx *core.AppContext) (conversation.Store, error) {
	var store conversation.Store
	switch cfg.Store.Backend {
	case config.BackendMemory:
		appCtx.Logger.Warn("using in-memory conversation store, history is lost on restart")
		store = conversation.NewMemoryStore(conversation.DefaultRetention, nil)
	default:
		rc := cfg.Store.Redis
		s, err := redisstore.New(redisstore.Config{
			Host:      rc.Host,
			Port:      rc.Port,
			Username:  rc.Username,
			Password:  rc.Password,
			DB:        rc.DB,
			KeyPrefix: rc.KeyPrefix,
		}, appCtx.ForModule(redisstore.ModuleID).Logger)
		if err != nil {
			return nil, err
		}
		store = s
	}
	appCtx.RegisterService(ServiceStore, store)
	return store, nil
}

// healthProbes returns the backend checks shared by /health and the
// heartbeat job.
func healthProbes(store conversation.Store, ch channel.Channel) map[string]func(ctx context.Context) error {
	probes := map[string]func(ctx context.Context) error{
		"whatsapp": func(context.Context) error {
			if !ch.Connected() {
				return channel.ErrNotConnected
			}
			return nil
		},
	}
	if p, ok := store.(conversation.Pinger); ok {
		probes["store"] = p.Ping
	}
	return probes
}
