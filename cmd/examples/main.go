package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/veiloq/okx-connector/pkg/exchanges/okx"
	"github.com/veiloq/okx-connector/pkg/logging"
)

func main() {
	logger := logging.NewLogger(logging.WithLevel(logging.DEBUG))

	client := okx.NewPublicClient(okx.WithLogger(logger))

	msgs, err := client.Start()
	if err != nil {
		logger.Error("failed to start client", logging.Error(err))
		os.Exit(1)
	}
	defer client.Stop()

	if err := client.Subscribe(okx.ChannelTickers, okx.NewArgs().WithInstID("BTC-USDT")); err != nil {
		logger.Warn("subscribe push failed, will be replayed", logging.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("consumer channel closed")
				return
			}
			logger.Info("frame received", logging.Any("frame", msg))
		case sig := <-sigCh:
			logger.Info("shutting down", logging.String("signal", sig.String()))
			return
		}
	}
}
