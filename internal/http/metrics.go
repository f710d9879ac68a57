package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "report_uploads_total",
		Help: "Stored report uploads by payload shape.",
	}, []string{"shape"})

	viewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "report_views_total",
		Help: "Report pages served.",
	})

	profilePatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "report_profile_patches_total",
		Help: "Successful profile edits.",
	})
)
