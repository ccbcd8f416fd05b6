package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TheusHen/ptstd/internal/config"
	"github.com/TheusHen/ptstd/ptstd"
	"github.com/TheusHen/ptstd/ptstd/crypto"
	"github.com/TheusHen/ptstd/ptstd/net"
	"github.com/TheusHen/ptstd/ptstd/thread"
)

func addNetFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("transport", "", "tcp or quic")
	f.String("addr", "", "address to listen on or dial")
	f.Int("slice-size", 0, "bytes per slice")
	f.Int("max-retries", 0, "retransmissions per slice")
	f.Int("max-message-size", 0, "largest accepted message")
	f.String("compression", "", "none|fast|default|best")
	f.Bool("secure", false, "negotiate an AES session key under RSA")
	f.Duration("timeout", 0, "per-message timeout")
}

// newPeer builds a peer from the net section. keys only matter for a secure
// listener; a secure dialer passes nil.
func newPeer(cfg *config.Config, keys *crypto.RSAKeyPair) *ptstd.Peer {
	opts := append(cfg.NetOptions(), net.WithLogger(logger("net")))
	transport := ptstd.Transport(cfg.Net.Transport)
	if !cfg.Net.Secure {
		return ptstd.NewPeer(transport, opts...)
	}
	peer := ptstd.NewSecurePeer(keys, transport, opts...)
	peer.HandshakeTimeout = cfg.Net.Timeout
	return peer
}

func newServeCmd() *cobra.Command {
	var keyPath string
	var maxConns int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an echo message server",
		Long: `Listen for message centers and echo every message back. Each connection is
served on the worker pool. With --secure every connection first negotiates an
AES session key under the server's RSA key (--key, or a fresh one); the key
exchange runs on the pool too and is bounded by --timeout.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd)
			log := logger("serve")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var keys *crypto.RSAKeyPair
			if cfg.Net.Secure {
				kp, err := loadRSAKey(keyPath)
				if err != nil {
					return err
				}
				keys = kp
			}
			peer := newPeer(cfg, keys)
			if err := peer.Listen(cfg.Net.Addr); err != nil {
				return err
			}
			defer peer.Close()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "listening on %s (%s)\n", peer.ListenAddr(), cfg.Net.Transport)

			pool, err := thread.NewPool(cfg.Pool.Workers,
				thread.WithQueueSize(cfg.Pool.QueueSize),
				thread.WithLogger(logger("thread")))
			if err != nil {
				return err
			}
			defer pool.Close()

			context.AfterFunc(ctx, func() { _ = peer.Close() })
			for served := 0; maxConns <= 0 || served < maxConns; served++ {
				mc, err := peer.AcceptConn(ctx)
				if err != nil {
					if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
						return nil
					}
					log.Warn().Err(err).Msg("accept failed")
					continue
				}
				job := func() {
					if err := peer.Establish(ctx, mc); err != nil {
						log.Warn().Err(err).Stringer("peer", mc.RemoteAddr()).Msg("handshake failed")
						return
					}
					echo(ctx, mc, cfg)
				}
				if err := pool.Submit(ctx, job); err != nil {
					_ = mc.Close()
					return nil
				}
			}
			return nil
		},
	}
	addNetFlags(cmd)
	cmd.Flags().StringVar(&keyPath, "key", "", "RSA private key PEM for --secure")
	cmd.Flags().IntVar(&maxConns, "max-conns", 0, "exit after serving this many connections (0 = forever)")
	return cmd
}

func echo(ctx context.Context, mc *net.MessageCenter, cfg *config.Config) {
	defer mc.Close()
	log := logger("serve").With().Stringer("peer", mc.RemoteAddr()).Logger()
	log.Info().Msg("connection opened")

	var buf []byte
	for {
		msg, err := mc.ReceiveInto(ctx, buf)
		if err != nil {
			log.Info().Err(err).Msg("connection closed")
			return
		}
		msgCtx, cancel := context.WithTimeout(ctx, cfg.Net.Timeout)
		err = mc.SendBytes(msgCtx, msg)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("echo failed")
			return
		}
		buf = msg
		log.Debug().Int("bytes", len(msg)).Msg("echoed")
	}
}

func newSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send message...",
		Short: "Send messages to a server and print the replies",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd)
			peer := newPeer(cfg, nil)
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Net.Timeout)
			defer cancel()

			mc, err := peer.Dial(ctx, cfg.Net.Addr)
			if err != nil {
				return err
			}
			defer mc.Close()

			for _, m := range args {
				if err := mc.SendBytes(ctx, []byte(m)); err != nil {
					return err
				}
				reply, err := mc.ReceiveBytes(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(reply))
			}
			return nil
		},
	}
	addNetFlags(cmd)
	return cmd
}
