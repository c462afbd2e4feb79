// Command tradecore runs the matching engine as a standalone process:
// it wires configuration, logging, metrics, the WebSocket transport,
// the matching engine, the order lifecycle manager, and the book
// keeper together, then serves requests until told to stop.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/tradecore/tradecore/booking"
	"github.com/tradecore/tradecore/config"
	"github.com/tradecore/tradecore/errs"
	"github.com/tradecore/tradecore/events"
	"github.com/tradecore/tradecore/logging"
	"github.com/tradecore/tradecore/matching"
	"github.com/tradecore/tradecore/metrics"
	"github.com/tradecore/tradecore/orders"
	"github.com/tradecore/tradecore/protocol"
	"github.com/tradecore/tradecore/transport/ws"
)

var (
	cfgFile        string
	bindFlag       string
	logLevelFlag   string
	commissionFlag float64
	spreadBpsFlag  float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tradecore",
		Short: "Single-venue matching engine and order lifecycle simulator",
		RunE:  run,
	}

	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file path (default: search ./tradecore.yaml)")
	rootCmd.Flags().StringVar(&bindFlag, "bind", "", "transport bind address, e.g. :5555")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.Flags().Float64Var(&commissionFlag, "commission-rate", 0, "commission rate applied to fill notional")
	rootCmd.Flags().Float64Var(&spreadBpsFlag, "spread-bps", 0, "synthetic liquidity seeding spread in basis points")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile, config.Overrides{
		Bind:           bindFlag,
		LogLevel:       logLevelFlag,
		CommissionRate: commissionFlag,
		SpreadBps:      spreadBpsFlag,
	})
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.NewFromLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	logging.SetLogger(logger)
	defer logger.Sync()

	var observer events.Observer = events.Discard{}
	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(prometheus.DefaultRegisterer)
		observer = collector

		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.Bind, metricsMux); err != nil {
				logger.Warn("metrics server stopped: " + err.Error())
			}
		}()
	}

	seedParams := matching.SeedParams{
		SpreadBps:   cfg.Matching.SpreadBps,
		Depth:       cfg.Matching.DepthLevels,
		QtyPerLevel: cfg.Matching.QtyPerLevel,
	}
	matcher := matching.New(seedParams, cfg.Matching.AutoSeedBook)
	keeper := booking.NewBookKeeper()
	manager := orders.New(matcher, keeper, orders.Config{
		CommissionRate: cfg.Commission.Rate,
		CommissionMin:  cfg.Commission.Min,
		Observer:       observer,
	})

	router := ws.NewRouter(cfg.Server.Bind)
	go func() {
		if err := router.Serve(); err != nil {
			logger.Error("transport server stopped: " + err.Error())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("tradecore is running on " + cfg.Server.Bind)
	serve(ctx, router, manager, collector)

	logger.Info("shutting down")
	return router.Close()
}

// serve runs the engine's strictly serial request loop: one frame is
// received, decoded, dispatched, and responded to before the next
// Recv call. This is the only place concurrency from the transport
// (many connections, each with its own read loop) is collapsed back
// into a single sequential stream.
func serve(ctx context.Context, socket ws.Socket, manager *orders.Manager, collector *metrics.Collector) {
	codec := protocol.BinaryCodec{}

	for {
		frame, err := socket.Recv(ctx)
		if err != nil {
			return
		}

		var stopTimer func()
		if collector != nil {
			stopTimer = collector.Timer()
		}

		responses := dispatch(frame, manager, codec)

		if stopTimer != nil {
			stopTimer()
		}

		for _, resp := range responses {
			encoded, err := codec.Marshal(resp)
			if err != nil {
				logging.L().Warn("failed to encode response: " + err.Error())
				continue
			}
			if err := socket.Send(ctx, ws.Frame{ClientID: frame.ClientID, Payload: encoded}); err != nil {
				logging.L().Warn("failed to send response: " + err.Error())
			}
		}
	}
}

func dispatch(frame ws.Frame, manager *orders.Manager, codec protocol.BinaryCodec) []protocol.Envelope {
	req, err := codec.Unmarshal(frame.Payload)
	if err != nil {
		// MalformedEnvelope: logged, no response — there is no
		// ref_msg_seq_num to target a reject at.
		logging.L().Warn("malformed envelope: " + err.Error())
		return nil
	}

	switch {
	case req.NewOrderSingle != nil:
		return manager.HandleNewOrder(req, req.SenderCompID)
	case req.OrderCancelRequest != nil:
		return manager.HandleCancelRequest(req, req.SenderCompID)
	case req.PositionRequest != nil:
		return manager.HandlePositionRequest(req, req.SenderCompID)
	case req.Heartbeat != nil:
		return []protocol.Envelope{{
			SenderCompID: protocol.EngineCompID,
			TargetCompID: req.SenderCompID,
			Heartbeat:    &protocol.Heartbeat{},
		}}
	default:
		return []protocol.Envelope{
			protocol.BuildReject(req.SenderCompID, time.Now(), req.MsgSeqNum, errs.RejectText(errs.ErrWrongBody, "")),
		}
	}
}
