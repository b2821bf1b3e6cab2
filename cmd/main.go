package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/pprof"
	"os"
	"reflect"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/go-tooling/pkg/metrics"
	"github.com/aukilabs/quadmap/bitmap"
	"github.com/aukilabs/quadmap/codec"
	"github.com/aukilabs/quadmap/featureflag"
	"github.com/aukilabs/quadmap/geometry"
	qhttp "github.com/aukilabs/quadmap/http"
	"github.com/aukilabs/quadmap/models"
	"github.com/aukilabs/quadmap/quadtree"
	"github.com/aukilabs/quadmap/smoketest"
	qwebsocket "github.com/aukilabs/quadmap/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

var (
	// The quadmap version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "quadmap_info",
		Help:        "Quadmap information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// This will effectively disable obfuscation of the config struct. Without it, the keys would get obfuscated causing the cli package to generate garbled command-line options.
// https://github.com/burrowers/garble/issues/403
var _ = reflect.TypeOf(config{})

type config struct {
	Addr               string        `cli:""        env:"QUADMAP_ADDR"                 help:"Listening address for client connections. The server is not started when empty."`
	AdminAddr          string        `cli:""        env:"QUADMAP_ADMIN_ADDR"           help:"Admin listening address."`
	LogLevel           string        `cli:""        env:"QUADMAP_LOG_LEVEL"            help:"Log level (debug|info|warning|error)."`
	LogIndent          bool          `cli:""        env:"QUADMAP_LOG_INDENT"           help:"Indent logs."`
	GridWidth          int           `cli:""        env:"QUADMAP_GRID_WIDTH"           help:"The width of the point map, in cells."`
	GridHeight         int           `cli:""        env:"QUADMAP_GRID_HEIGHT"          help:"The height of the point map, in cells."`
	Capacity           int           `cli:""        env:"QUADMAP_CAPACITY"             help:"The number of points a quadtree leaf holds before splitting."`
	RandomPoints       int           `cli:""        env:"QUADMAP_RANDOM_POINTS"        help:"The number of random points inserted at startup."`
	Seed               int           `cli:""        env:"QUADMAP_SEED"                 help:"The random point seed. A time based seed is used when 0."`
	Output             string        `cli:""        env:"QUADMAP_OUTPUT"               help:"The file where the encoded point map is written."`
	Compressor         string        `cli:""        env:"QUADMAP_COMPRESSOR"           help:"The compression applied to the encoded point map (none|rle)."`
	FrameDuration      time.Duration `cli:",hidden" env:"QUADMAP_FRAME_DURATION"       help:"The duration of a point map frame."`
	LogSummaryInterval time.Duration `cli:",hidden" env:"QUADMAP_LOG_SUMMARY_INTERVAL" help:"The duration between each log summary by connection."`
	FeatureFlags       []string      `cli:",hidden" env:"QUADMAP_FEATURE_FLAGS"        help:"Comma separated feature flags"`
	Version            bool          `cli:""        env:"-"                            help:"Show version."`
	Help               bool          `cli:""        env:"-"                            help:"Show help."`
}

func main() {
	conf := config{
		LogLevel:           logs.InfoLevel.String(),
		GridWidth:          128,
		GridHeight:         64,
		Capacity:           quadtree.DefaultCapacity,
		RandomPoints:       1024,
		Output:             "points.bin",
		Compressor:         string(codec.CompressorNone),
		FrameDuration:      time.Millisecond * 50,
		LogSummaryInterval: time.Minute,
	}

	// set the information gauge to 1, useful for SUM query
	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Builds a random point map, encodes it to a file and serves it.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	if err := validateConfig(conf); err != nil {
		logs.Fatal(err)
	}

	flags, err := featureflag.Parse(conf.FeatureFlags)
	if err != nil {
		logs.Fatal(err)
	}

	compressor, err := codec.ParseCompressor(conf.Compressor)
	if err != nil {
		logs.Fatal(err)
	}

	region := geometry.NewRegion(geometry.Point{}, geometry.NewSize(uint32(conf.GridWidth), uint32(conf.GridHeight)))
	pointMap := models.NewPointMap(region, conf.Capacity, conf.FrameDuration)
	defer pointMap.Close()

	seed := int64(conf.Seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	pointMap.Insert(randomPoints(rand.New(rand.NewSource(seed)), conf.RandomPoints, region.Size)...)
	flags.IfNotSet(featureflag.FlagDisableBalance, pointMap.Balance)

	logs.WithTag("map_id", pointMap.ID).
		WithTag("points", pointMap.Len()).
		WithTag("seed", seed).
		WithTag("tree", pointMap.DebugInfo()).
		Info("random points inserted")

	encoder := codec.Encoder{Compressor: compressor}

	cached, err := storePointMap(pointMap, conf.Output, compressor)
	if err != nil {
		logs.Fatal(err)
	}

	decoded, err := cached.Decode()
	if err != nil {
		logs.Fatal(errors.New("decoding point map failed").Wrap(err))
	}

	logs.WithTag("file_name", conf.Output).
		WithTag("compressor", compressor.String()).
		WithTag("points", len(decoded)).
		Info("point map decoded")

	flags.IfSet(featureflag.FlagVerifyRoundTrip, func() {
		if err := verifyStoredPointMap(pointMap, conf.Output, compressor, cached); err != nil {
			logs.Fatal(err)
		}
		logs.WithTag("file_name", conf.Output).Info("round trip verified")
	})

	if conf.Addr == "" {
		return
	}

	readinessCheck := func() bool {
		return ctx.Err() == nil
	}

	var service http.ServeMux
	service.Handle("/health", qhttp.HandleWithCORS(http.HandlerFunc(qhttp.HandleHealthCheck)))
	service.Handle("/ready", qhttp.HandleWithCORS(qhttp.HandleReadyCheck(readinessCheck)))
	service.Handle("/version", qhttp.HandleWithCORS(qhttp.HandleVersion(version)))
	service.Handle("/region", qhttp.HandleWithCORS(qhttp.HandleRegion(pointMap)))
	service.Handle("/debug/tree", qhttp.HandleWithCORS(qhttp.HandleTreeDebugInfo(pointMap)))

	service.HandleFunc("/smoke-test", smoketest.HandleSmokeTest(ctx, smoketest.Options{
		Endpoint:  "http://" + conf.Addr,
		UserAgent: fmt.Sprintf("Quadmap %s", version),
		SendResult: func(_ context.Context, res smoketest.Results) error {
			logs.WithTag("to_endpoint", res.ToEndpoint).
				WithTag("status", res.Status).
				WithTag("latency_ms", res.LatencyMilliSec).
				WithTag("points", res.Points).
				Info("smoke test done")
			return nil
		},
	}))

	flags.IfNotSet(featureflag.FlagDisableSnapshot, func() {
		service.Handle("/snapshot", qhttp.HandleWithCORS(qhttp.HandleSnapshot(pointMap, encoder)))
	})

	flags.IfNotSet(featureflag.FlagDisableFrameStream, func() {
		go pointMap.StartDispatchFrames()

		service.Handle("/frames", qhttp.HandleWithCORS(websocket.Server{
			Handler: func(conn *websocket.Conn) {
				defer conn.Close()

				var h qwebsocket.Handler = &qwebsocket.FrameStreamer{Map: pointMap}
				h = qwebsocket.HandlerWithLogs(h, conf.LogSummaryInterval)
				h = qwebsocket.HandlerWithMetrics(h, conf.Addr)
				defer h.Close()

				qwebsocket.Handle(ctx, conn, h)
			},
		}))
	})

	servers := []*http.Server{
		{Addr: conf.Addr, Handler: metrics.HTTPHandler(&service, qhttp.MetricsPathFormatter)},
	}

	if conf.AdminAddr != "" {
		var admin http.ServeMux
		admin.Handle("/metrics", promhttp.Handler())
		admin.HandleFunc("/health", qhttp.HandleHealthCheck)
		admin.HandleFunc("/ready", qhttp.HandleReadyCheck(readinessCheck))
		admin.HandleFunc("/debug/pprof/", pprof.Index)
		admin.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
		admin.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		admin.HandleFunc("/debug/pprof/trace", pprof.Trace)
		admin.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
		admin.Handle("/debug/pprof/heap", pprof.Handler("heap"))

		servers = append(servers, &http.Server{Addr: conf.AdminAddr, Handler: &admin})
	}

	logs.WithTag("version", version).
		WithTag("log_level", conf.LogLevel).
		WithTag("map_id", pointMap.ID).
		WithTag("feature_flags", flags.Flags()).
		Info("starting quadmap server")

	qhttp.ListenAndServe(ctx, servers...)
}

func validateConfig(conf config) error {
	if conf.GridWidth < 1 || conf.GridWidth > bitmap.MaxDimension ||
		conf.GridHeight < 1 || conf.GridHeight > bitmap.MaxDimension {
		return errors.New("invalid grid size").
			WithTag("width", conf.GridWidth).
			WithTag("height", conf.GridHeight).
			WithTag("max", bitmap.MaxDimension)
	}

	if conf.Capacity < 1 {
		return errors.New("capacity must be at least 1").
			WithTag("capacity", conf.Capacity)
	}

	if conf.RandomPoints < 0 {
		return errors.New("random point count can't be negative").
			WithTag("random_points", conf.RandomPoints)
	}

	if conf.Output == "" {
		return errors.New("output file is empty")
	}

	if conf.FrameDuration <= 0 {
		return errors.New("frame duration must be positive").
			WithTag("frame_duration", conf.FrameDuration)
	}

	return nil
}
