// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/database"
	"github.com/luxfi/database/badgerdb"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/custodyvm/utils/profiler"
	"github.com/luxfi/custodyvm/utils/timer/mockable"
	"github.com/luxfi/custodyvm/vms/custodyvm"
	"github.com/luxfi/custodyvm/vms/custodyvm/auth"
	"github.com/luxfi/custodyvm/vms/custodyvm/ledger"
	"github.com/luxfi/custodyvm/vms/custodyvm/qc"
)

const (
	APIPath         = "/ext/" + custodyvm.ServiceName
	shutdownTimeout = 10 * time.Second
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "custodyvm",
		Short: "Runs the custody engine behind a JSON-RPC API",
		RunE:  runFunc,
	}
	AddFlags(c.Flags())
	return c
}

func runFunc(c *cobra.Command, args []string) error {
	flags, err := ParseFlags(c.Flags(), args)
	if err != nil {
		return err
	}
	cfg := flags.Config
	logger := log.NewLogger("custodyvm")

	grants, err := cfg.ParseGrants()
	if err != nil {
		return err
	}
	roles := auth.NewRoleSet()
	for actor, capabilities := range grants {
		roles.Grant(actor, capabilities...)
	}

	db, err := openDB(cfg.DataDir)
	if err != nil {
		return err
	}

	engine, err := custodyvm.New(
		cfg,
		custodyvm.Backends{
			Auth:   roles,
			Tokens: ledger.NewBalances(),
			SPV:    staticVerifier(flags.AcceptSPV),
		},
		db,
		metric.NewRegistry(),
		&mockable.Clock{},
		logger,
	)
	if err != nil {
		return errors.Join(err, db.Close())
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Warn("failed to close engine", log.Err(err))
		}
		if err := db.Close(); err != nil {
			logger.Warn("failed to close database", log.Err(err))
		}
	}()

	handler, err := engine.CreateHandler()
	if err != nil {
		return err
	}
	router := mux.NewRouter()
	router.Handle(APIPath, handler).Methods(http.MethodPost)

	listener, err := net.Listen("tcp", cfg.HTTPAddress)
	if err != nil {
		return err
	}
	server := &http.Server{
		Handler:           cors.New(cors.Options{AllowedOrigins: cfg.AllowedOrigins}).Handler(router),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("serving custody API",
			log.String("address", listener.Addr().String()),
			log.String("path", APIPath),
			log.String("network", cfg.Network),
		)
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.Profiler.Enabled() {
		g.Go(func() error {
			return profiler.New(cfg.Profiler).Run(ctx)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down custody API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openDB(dir string) (database.Database, error) {
	if dir == "" {
		return memdb.New(), nil
	}
	return badgerdb.New(dir, nil, "custodyvm", nil)
}

// staticVerifier accepts or rejects every SPV proof. Deployments replace it
// with a verifier backed by a Bitcoin header relay.
type staticVerifier bool

func (v staticVerifier) VerifyWalletControl(ids.ShortID, string, []byte, []byte, []byte) bool {
	return bool(v)
}

func (v staticVerifier) VerifyRedemptionFulfillment(ids.ID, string, uint64, []byte, []byte) bool {
	return bool(v)
}

var _ qc.SPVVerifier = staticVerifier(false)
