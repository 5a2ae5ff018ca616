package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ingestedDocuments = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "newsmind_ingested_documents_total",
		Help: "Documents accepted into a session corpus.",
	})
	ingestedChunks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "newsmind_ingested_chunks_total",
		Help: "Chunks produced by ingestion.",
	})
	retrievals = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "newsmind_retrievals_total",
		Help: "Retrieval queries served, across ask and search.",
	})
	generations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "newsmind_generations_total",
		Help: "Generation operations by mode and outcome.",
	}, []string{"mode", "outcome"})
	generationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "newsmind_generation_seconds",
		Help:    "Generation operation latency in seconds.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
	})
)

func init() {
	prometheus.MustRegister(ingestedDocuments, ingestedChunks, retrievals, generations, generationSeconds)
}

func observeGeneration(mode string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	generations.WithLabelValues(mode, outcome).Inc()
	generationSeconds.Observe(time.Since(start).Seconds())
}
