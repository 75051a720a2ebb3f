package viewer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var viewerPolls = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "knowgraph_viewer_polls_total",
	Help: "Viewer polls by result (changed, unchanged, not_modified, error)",
}, []string{"result"})
