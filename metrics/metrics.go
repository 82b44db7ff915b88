package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_http_requests_total",
		Help: "HTTP requests by route and status",
	}, []string{"method", "route", "status"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chirp_http_request_duration_seconds",
		Help:    "HTTP request duration seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	TweetsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chirp_tweets_created_total",
		Help: "Tweets created, replies and quotes included",
	})
	Interactions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_interactions_total",
		Help: "Likes, retweets, comments and follows by resulting action",
	}, []string{"action"})
	PollVotes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chirp_poll_votes_total",
		Help: "Poll votes cast",
	})
	LiveClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chirp_live_clients",
		Help: "Connected live timeline clients",
	})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, TweetsCreated, Interactions, PollVotes, LiveClients)
}

// IncInteraction counts one interaction, e.g. "liked" or "unfollowed".
func IncInteraction(action string) { Interactions.WithLabelValues(action).Inc() }

// Middleware records count and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus exposition format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
