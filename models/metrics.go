package models

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	mapIDLabel = "map_id"
)

var (
	pointMapPointCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "point_map_point_count",
		Help: "The number of points stored in a point map.",
	}, []string{mapIDLabel})

	pointMapFrameHandlers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "point_map_frame_handlers",
		Help: "The number of frame handlers registered on a point map.",
	}, []string{mapIDLabel})
)

func instrumentPointCount(mapID string, count int) {
	pointMapPointCount.
		With(prometheus.Labels{mapIDLabel: mapID}).
		Set(float64(count))
}

func instrumentFrameHandlers(mapID string, count int) {
	pointMapFrameHandlers.
		With(prometheus.Labels{mapIDLabel: mapID}).
		Set(float64(count))
}

func instrumentDeleteMap(mapID string) {
	pointMapPointCount.Delete(prometheus.Labels{mapIDLabel: mapID})
	pointMapFrameHandlers.Delete(prometheus.Labels{mapIDLabel: mapID})
}
