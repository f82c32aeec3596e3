// Command node runs a single-authority farm chain node: block production,
// the JSON-RPC endpoint and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/tolelom/tolfarm/config"
	"github.com/tolelom/tolfarm/consensus"
	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/events"
	"github.com/tolelom/tolfarm/indexer"
	"github.com/tolelom/tolfarm/internal/logger"
	"github.com/tolelom/tolfarm/rpc"
	"github.com/tolelom/tolfarm/storage"
	"github.com/tolelom/tolfarm/vm"
	"github.com/tolelom/tolfarm/wallet"

	// Import VM modules to trigger their init() self-registration.
	_ "github.com/tolelom/tolfarm/vm/modules/admin"
	_ "github.com/tolelom/tolfarm/vm/modules/chance"
	_ "github.com/tolelom/tolfarm/vm/modules/economy"
	_ "github.com/tolelom/tolfarm/vm/modules/production"
	_ "github.com/tolelom/tolfarm/vm/modules/randomness"
	_ "github.com/tolelom/tolfarm/vm/modules/staking"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "config.toml", "path to TOML config file")
	envFile := flag.String("env-file", ".env", "optional .env file with TOLFARM_* overrides")
	keyPath := flag.String("key", "validator.key", "path to validator keystore")
	genKey := flag.Bool("genkey", false, "generate a new validator key and exit")
	verbose := flag.BoolP("verbose", "v", false, "enable verbose (debug) logging")
	flag.Parse()

	start := time.Now()
	cfg, err := config.Load(*cfgPath, *envFile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := logger.New(*verbose || cfg.Verbose)

	// Keystore password comes from the environment, never from flags.
	password := os.Getenv(config.EnvPrefix + "PASSWORD")
	if password == "" {
		log.Warn(config.EnvPrefix + "PASSWORD not set, keystore uses an empty password")
	}

	if *genKey {
		w, err := wallet.Generate(cfg.Genesis.ChainID)
		if err != nil {
			return err
		}
		if err := wallet.SaveKey(*keyPath, password, w.PrivKey()); err != nil {
			return err
		}
		fmt.Printf("Validator address: %s\nSaved to: %s\n", w.Address(), *keyPath)
		return nil
	}

	privKey, err := wallet.LoadKey(*keyPath, password)
	if err != nil {
		return fmt.Errorf("load key: %w", err)
	}
	interval, err := cfg.Interval()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("mkdir data dir: %w", err)
	}
	db, err := storage.Open(cfg.Engine, filepath.Join(cfg.DataDir, "chain"))
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	state := storage.NewStateDB(db)
	bc := core.NewBlockchain(storage.NewBlockStore(db))
	if err := bc.Init(); err != nil {
		return fmt.Errorf("blockchain init: %w", err)
	}

	emitter := events.NewEmitter(log)
	idx, err := indexer.New(db, emitter, indexer.WithLogger(log))
	if err != nil {
		return fmt.Errorf("indexer: %w", err)
	}
	clock := clockwork.NewRealClock()
	mempool := core.NewMempool(clock)
	exec := vm.NewExecutor(state, emitter, vm.WithChainID(cfg.Genesis.ChainID), vm.WithLogger(log))

	if bc.Tip() == nil {
		genesis, err := config.CreateGenesisBlock(cfg, state, exec, privKey, clock.Now())
		if err != nil {
			return fmt.Errorf("genesis: %w", err)
		}
		if err := bc.AddBlock(genesis); err != nil {
			return fmt.Errorf("add genesis: %w", err)
		}
		log.Info("genesis block committed", "hash", genesis.Hash, "pools", len(genesis.Transactions))
	}

	poa := consensus.New(bc, state, mempool, exec, emitter, privKey, consensus.Options{
		MaxBlockTxs: cfg.MaxBlockTxs,
		Clock:       clock,
		Log:         log.With("component", "consensus"),
	})

	// RPC reads committed state through its own view so it never touches
	// the producer's write buffer.
	view := storage.NewStateDB(db)
	server := rpc.NewServer(cfg.RPCAddr, rpc.NewHandler(bc, mempool, view, idx, cfg.Genesis.ChainID), rpc.Options{
		AuthToken:   cfg.RPCAuthToken,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.RateLimit,
		RateBurst:   cfg.RateBurst,
		Log:         log.With("component", "rpc"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Serve(ctx) })
	g.Go(func() error { return poa.Run(ctx, interval) })

	log.Info("node running",
		"validator", privKey.Public().String(),
		"chain_id", cfg.Genesis.ChainID,
		"height", bc.Height(),
		"engine", cfg.Engine,
		"block_interval", interval,
		logger.Since(start),
	)

	err = g.Wait()
	log.Info("shutting down", "height", bc.Height())
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("node stopped", "error", err)
		return err
	}
	return nil
}
