package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"f1pitwall/pkg/console"
	"f1pitwall/pkg/generator"
	"f1pitwall/pkg/ingest"
	"f1pitwall/pkg/log"
	"f1pitwall/pkg/pubsub"
	"f1pitwall/pkg/relay"
	"f1pitwall/pkg/webserver"
)

const envPrefix = "F1PITWALL"

var (
	udpListen   string
	httpListen  string
	staticDir   string
	natsURL     string
	demoMode    bool
	showConsole bool
	devLog      bool
)

var rootCmd = &cobra.Command{
	Use:   "f1pitwall",
	Short: "Live timing wall for F1 game telemetry",
	Long: `f1pitwall listens for the UDP telemetry stream the F1 game emits,
reconstructs lap, sector, tyre and pit state per car and pushes a
consolidated snapshot to any number of connected viewers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

// Execute is called by main and only needs to happen once.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().StringVar(&udpListen, "udp-listen", ":20777",
		"address to receive game telemetry on")
	rootCmd.Flags().StringVar(&httpListen, "http-listen", ":8080",
		"address to serve the viewer and websocket on")
	rootCmd.Flags().StringVar(&staticDir, "static-dir", "",
		"directory of viewer assets to serve at /")
	rootCmd.Flags().StringVar(&natsURL, "nats-url", "",
		"relay snapshots to this NATS server (disabled when empty)")
	rootCmd.Flags().BoolVar(&demoMode, "demo", false,
		"synthesize a demo session instead of listening for telemetry")
	rootCmd.Flags().BoolVar(&showConsole, "console", false,
		"render the live leaderboard to stdout")
	rootCmd.Flags().BoolVar(&devLog, "dev-log", false,
		"log in development format")
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	bindFlags(rootCmd, viper.GetViper())
}

// bindFlags binds each cobra flag to its environment variable equivalent,
// e.g. --udp-listen to F1PITWALL_UDP_LISTEN.
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if err := v.BindEnv(f.Name, fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
			fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
		}
		if !f.Changed && v.IsSet(f.Name) {
			_ = cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func run(ctx context.Context) error {
	if devLog {
		log.InitDevelopmentLogger()
	} else {
		log.InitProductionLogger()
	}
	defer log.L().Sync()

	ps := pubsub.NewPubSub[string]()
	svc := ingest.NewService(ps)

	g, ctx := errgroup.WithContext(ctx)

	var packets <-chan []byte
	if demoMode {
		gen := generator.New()
		packets = gen.Packets()
		g.Go(func() error { return gen.Run(ctx) })
	} else {
		listener := ingest.NewListener(udpListen)
		packets = listener.Packets()
		g.Go(func() error { return listener.Run(ctx) })
	}

	g.Go(func() error { return svc.Run(ctx, packets) })
	g.Go(func() error {
		return webserver.NewManager(httpListen, staticDir, ps).Run(ctx)
	})
	if natsURL != "" {
		g.Go(func() error { return relay.New(natsURL, ps).Run(ctx) })
	}
	if showConsole {
		g.Go(func() error { return console.NewMonitor(ps).Run(ctx) })
	}

	return g.Wait()
}
