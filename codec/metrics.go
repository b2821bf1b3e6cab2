package codec

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	compressorLabel = "compressor"
	errTypeLabel    = "error_type"
	operationLabel  = "operation"

	operationEncode = "encode"
	operationDecode = "decode"
)

var (
	codecEncodedBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codec_encoded_bytes",
		Help: "The number of bytes produced by encoding.",
	}, []string{
		compressorLabel,
	})

	codecDecodedPoints = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codec_decoded_points",
		Help: "The number of points produced by decoding.",
	}, []string{
		compressorLabel,
	})

	codecErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codec_errors",
		Help: "The errors that occured while encoding or decoding.",
	}, []string{
		operationLabel,
		compressorLabel,
		errTypeLabel,
	})

	codecLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "codec_latency",
		Help: "The time to encode or decode a bitmap.",
	}, []string{
		operationLabel,
		compressorLabel,
	})
)

func instrumentEncodedBytes(c Compressor, n int) {
	codecEncodedBytes.
		With(prometheus.Labels{compressorLabel: c.String()}).
		Add(float64(n))
}

func instrumentDecodedPoints(c Compressor, n int) {
	codecDecodedPoints.
		With(prometheus.Labels{compressorLabel: c.String()}).
		Add(float64(n))
}

func measure(operation string, c Compressor, f func() error) error {
	start := time.Now()

	err := f()
	if err != nil {
		codecErrors.With(prometheus.Labels{
			operationLabel:  operation,
			compressorLabel: c.String(),
			errTypeLabel:    errors.Type(err),
		}).Inc()
		return err
	}

	codecLatency.With(prometheus.Labels{
		operationLabel:  operation,
		compressorLabel: c.String(),
	}).Observe(time.Since(start).Seconds())
	return nil
}
