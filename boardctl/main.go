package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/docopt/docopt-go"

	"github.com/thunderboard/thunderboard/board"
)

const BoardCtlVersion = "0.0.1"

// time for the last sends to reach the producer before the transport closes
const closeLinger = 500 * time.Millisecond

var Out *log.Logger
var Err *log.Logger

func init() {
	Out = log.New(os.Stdout, "", 0)
	Err = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lshortfile)
}

func main() {
	usage := fmt.Sprintf(
		`Thunderboard console client.

The url may be set in the config file. Flags override the config file.
The default discover service is %s.

Usage:
    boardctl watch [--url=<url>] [--config=<config>] [--codec=<codec>] [--jwt=<jwt>]
        [--verbose]
    boardctl list [--url=<url>] [--config=<config>] [--codec=<codec>] [--jwt=<jwt>]
        [--timeout=<timeout>]
        [--verbose]
    boardctl clean-inactive [--url=<url>] [--config=<config>] [--codec=<codec>] [--jwt=<jwt>]
        [--timeout=<timeout>]
        [--verbose]
    boardctl discover [--service=<service>] [--timeout=<timeout>]

Options:
    -h --help               Show this screen.
    --version               Show version.
    --url=<url>             Producer websocket url.
    --config=<config>       YAML config file.
    --codec=<codec>         Frame codec: json, msgpack or proto.
    --jwt=<jwt>             Bearer token for the handshake.
    --service=<service>     mDNS service to browse.
    --timeout=<timeout>     How long to wait [default: 10s].
    --verbose               Debug logging.`,
		DefaultDiscoverService,
	)

	opts, err := docopt.ParseArgs(usage, os.Args[1:], BoardCtlVersion)
	if err != nil {
		panic(err)
	}

	flag.Set("logtostderr", "true")
	if verbose, _ := opts.Bool("--verbose"); verbose {
		flag.Set("v", "1")
	}

	if watch_, _ := opts.Bool("watch"); watch_ {
		watch(opts)
	} else if list_, _ := opts.Bool("list"); list_ {
		list(opts)
	} else if cleanInactive_, _ := opts.Bool("clean-inactive"); cleanInactive_ {
		cleanInactive(opts)
	} else if discover_, _ := opts.Bool("discover"); discover_ {
		discover(opts)
	}
}

// the config file with the flags applied
func resolveConfig(opts docopt.Opts) (*Config, error) {
	config := &Config{}
	if path, err := opts.String("--config"); err == nil && path != "" {
		config, err = LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}
	if url, err := opts.String("--url"); err == nil && url != "" {
		config.Url = url
	}
	if codec, err := opts.String("--codec"); err == nil && codec != "" {
		config.Codec = codec
	}
	if jwt, err := opts.String("--jwt"); err == nil && jwt != "" {
		config.Jwt = jwt
	}
	if config.Url == "" {
		return nil, fmt.Errorf("no url, set --url or url in the config file")
	}
	return config, nil
}

func requireTimeout(opts docopt.Opts) time.Duration {
	timeoutStr, _ := opts.String("--timeout")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		Err.Printf("Invalid timeout (%s).", err)
		os.Exit(2)
	}
	return timeout
}

// a dashboard driven by one event queue, fed by one websocket transport
type Client struct {
	ctx    context.Context
	cancel context.CancelFunc

	dashboard *board.Dashboard
	queue     *board.EventQueue
	transport *board.WsTransport
}

func NewClient(ctx context.Context, config *Config, renderer board.Renderer) (*Client, error) {
	dashboardSettings := config.DashboardSettings()
	transportSettings, err := config.WsTransportSettings()
	if err != nil {
		return nil, err
	}

	cancelCtx, cancel := context.WithCancel(ctx)

	var auth *board.ClientAuth
	if config.Jwt != "" {
		auth = &board.ClientAuth{
			ByJwt: config.Jwt,
		}
	}

	queue := board.NewEventQueue(cancelCtx, dashboardSettings.EventQueueSize)
	transport := board.NewWsTransport(cancelCtx, config.Url, auth, queue, transportSettings)
	dashboard := board.NewDashboard(transport, renderer, dashboardSettings)

	client := &Client{
		ctx:       cancelCtx,
		cancel:    cancel,
		dashboard: dashboard,
		queue:     queue,
		transport: transport,
	}
	go client.queue.Run(client.dashboard)
	return client, nil
}

func (self *Client) Post(event board.Event) {
	if err := self.queue.Post(event); err != nil {
		Err.Printf("%T not posted (%s).", event, err)
	}
}

// waits until every event posted before it ran
func (self *Client) Flush(timeout time.Duration) bool {
	done := make(chan struct{})
	self.Post(&flushEvent{done: done})
	select {
	case <-done:
		return true
	case <-self.ctx.Done():
		return false
	case <-time.After(timeout):
		return false
	}
}

// tells the producer this client is leaving, then closes
func (self *Client) Close() {
	self.Post(&board.LeaveEvent{})
	if self.Flush(closeLinger) && self.transport.IsConnected() {
		select {
		case <-time.After(closeLinger):
		case <-self.ctx.Done():
		}
	}
	self.transport.Close()
	self.queue.Close()
	self.cancel()
}

type flushEvent struct {
	done chan struct{}
}

func (self *flushEvent) Apply(dashboard *board.Dashboard) error {
	close(self.done)
	return nil
}

// closes `identified` once the producer has assigned an identity
type awaitIdentityEvent struct {
	identified chan struct{}
}

func (self *awaitIdentityEvent) Apply(dashboard *board.Dashboard) error {
	dashboard.Session().WithIdentity(func(clientId board.ClientId) {
		close(self.identified)
	})
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
}

// run the engine and print to the console. commands are read from stdin.
func watch(opts docopt.Opts) {
	config, err := resolveConfig(opts)
	if err != nil {
		Err.Printf("%s", err)
		os.Exit(2)
	}

	signalCtx, stop := signalContext()
	defer stop()

	renderer := NewConsoleRenderer(os.Stdout)
	client, err := NewClient(context.Background(), config, renderer)
	if err != nil {
		Err.Printf("%s", err)
		os.Exit(2)
	}
	defer client.Close()

	Out.Printf("Watching %s.", config.Url)

	leave := make(chan struct{})
	go readCommands(os.Stdin, client, renderer, leave)

	select {
	case <-signalCtx.Done():
	case <-leave:
	case <-client.transport.Done():
	}
}

func readCommands(in io.Reader, client *Client, renderer *ConsoleRenderer, leave chan struct{}) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		event, err := ParseCommand(line, renderer)
		if err != nil {
			Err.Printf("%s", err)
			continue
		}
		if _, ok := event.(*board.LeaveEvent); ok {
			// sent by close
			close(leave)
			return
		}
		client.Post(event)
	}
}

// print the catalog and exit
func list(opts docopt.Opts) {
	config, err := resolveConfig(opts)
	if err != nil {
		Err.Printf("%s", err)
		os.Exit(2)
	}
	timeout := requireTimeout(opts)

	signalCtx, stop := signalContext()
	defer stop()

	listed := make(chan []board.ObjectSummary, 1)
	renderer := NewConsoleRenderer(io.Discard)
	renderer.OnList(func(entries []board.ObjectSummary) {
		select {
		case listed <- entries:
		default:
		}
	})

	client, err := NewClient(context.Background(), config, renderer)
	if err != nil {
		Err.Printf("%s", err)
		os.Exit(2)
	}
	defer client.Close()

	// sent once the producer assigns an identity
	client.Post(&board.RequestListEvent{})

	select {
	case entries := <-listed:
		for _, line := range CatalogLines(entries) {
			Out.Printf("%s", line)
		}
		Out.Printf("%d objects.", len(entries))
	case <-signalCtx.Done():
	case <-time.After(timeout):
		Err.Printf("No list (timeout).")
	}
}

func cleanInactive(opts docopt.Opts) {
	config, err := resolveConfig(opts)
	if err != nil {
		Err.Printf("%s", err)
		os.Exit(2)
	}
	timeout := requireTimeout(opts)

	signalCtx, stop := signalContext()
	defer stop()

	client, err := NewClient(context.Background(), config, &board.NopRenderer{})
	if err != nil {
		Err.Printf("%s", err)
		os.Exit(2)
	}
	defer client.Close()

	identified := make(chan struct{})
	client.Post(&awaitIdentityEvent{identified: identified})

	select {
	case <-identified:
		client.Post(&board.CleanInactiveEvent{})
		Out.Printf("Clean inactive sent.")
	case <-signalCtx.Done():
	case <-time.After(timeout):
		Err.Printf("Not connected (timeout).")
	}
}

func discover(opts docopt.Opts) {
	service, _ := opts.String("--service")
	if service == "" {
		service = DefaultDiscoverService
	}
	timeout := requireTimeout(opts)

	signalCtx, stop := signalContext()
	defer stop()

	producers, err := Discover(signalCtx, service, timeout)
	if err != nil {
		Err.Printf("%s", err)
		os.Exit(1)
	}
	for _, producer := range producers {
		Out.Printf("%s %s", producer.Instance, producer.Url)
	}
	Out.Printf("%d producers.", len(producers))
}
