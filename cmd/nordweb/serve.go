package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nordweb/portal/pkg/account"
	"github.com/nordweb/portal/pkg/auth"
	"github.com/nordweb/portal/pkg/config"
	"github.com/nordweb/portal/pkg/contact"
	"github.com/nordweb/portal/pkg/portal"
	"github.com/nordweb/portal/pkg/site"
	transporthttp "github.com/nordweb/portal/pkg/transport/http"
)

// pruneInterval is how often expired rate limit windows are dropped.
const pruneInterval = time.Minute

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(ctx, cfg.Storage, false)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("storage ready", "type", cfg.Storage.Type)

	blobs, err := openBlobs(cfg.Blob)
	if err != nil {
		return err
	}

	mailer, err := newMailer(cfg.Mail)
	if err != nil {
		return err
	}

	tokens, err := newTokens(cfg.Auth)
	if err != nil {
		return fmt.Errorf("creating session tokens: %w", err)
	}

	signInLimiter := auth.NewInProcessLimiter("signin", cfg.Auth.SignInLimit.Limit, cfg.Auth.SignInLimit.Window)
	contactLimiter := auth.NewInProcessLimiter("contact", cfg.Contact.RateLimit.Limit, cfg.Contact.RateLimit.Window)
	requestLimiter := auth.NewInProcessLimiter("request", cfg.Auth.RequestLimit.Limit, cfg.Auth.RequestLimit.Window)

	accounts, err := account.New(store, tokens, account.Config{
		BootstrapOwner: cfg.Auth.BootstrapOwner,
		BcryptCost:     cfg.Auth.BcryptCost,
	}, account.WithSignInLimiter(signInLimiter))
	if err != nil {
		return err
	}

	portalSvc := portal.New(store, blobs, portal.Config{
		MaxDocumentBytes: cfg.Portal.MaxDocumentBytes,
		RecentUpdates:    cfg.Portal.RecentUpdates,
	})

	contactSvc := contact.New(store, mailer, contactLimiter, contact.Config{
		Recipient:   cfg.Contact.Recipient,
		TemplateID:  cfg.Mail.TemplateID,
		SendTimeout: cfg.Mail.Timeout,
	})

	content, err := site.LoadContent(cfg.Site.ContentFile)
	if err != nil {
		return fmt.Errorf("loading site content: %w", err)
	}
	pages, err := site.New(content, site.Deps{
		Accounts: accounts,
		Sessions: tokens,
		Contact:  contactSvc,
		Portal:   portalSvc,
	})
	if err != nil {
		return fmt.Errorf("building site: %w", err)
	}

	adapter := transporthttp.NewAdapter(transporthttp.Services{
		Accounts: accounts,
		Portal:   portalSvc,
		Contact:  contactSvc,
		Sessions: tokens,
	}, transporthttp.Config{
		MaxBodySize:   cfg.Server.MaxBodyBytes,
		MaxUploadSize: cfg.Portal.MaxDocumentBytes + 1<<20,
	})

	routerCfg := transporthttp.RouterConfig{API: adapter, Pages: pages, Health: store}
	if cfg.Observability.Metrics.Enabled {
		routerCfg.MetricsPath = cfg.Observability.Metrics.Path
	}

	// A zero request limit disables per-identity limiting.
	authMW := auth.Middleware(newAuthChain(cfg.Auth, tokens), accounts, requestLimiter)

	srv := transporthttp.NewServer(transporthttp.NewRouter(routerCfg),
		transporthttp.WithAddr(":"+strconv.Itoa(cfg.Server.Port)),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithLogger(slog.Default()),
		transporthttp.WithMiddleware(authMW),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Run(gctx); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return auth.RunPruner(gctx, pruneInterval, signInLimiter, contactLimiter, requestLimiter)
	})

	return g.Wait()
}
