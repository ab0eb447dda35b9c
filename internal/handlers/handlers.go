package handlers

import (
	"time"

	"github.com/code-100-precent/LingRx/internal/models"
	"github.com/code-100-precent/LingRx/pkg/reactive"
	"github.com/code-100-precent/LingRx/pkg/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const eventReadingCreated = "reading.created"

// Options wires the optional collaborators of Handlers
type Options struct {
	// Scheduler runs every pipeline; nil means scheduler.Default()
	Scheduler scheduler.Scheduler
	// Redis fans new readings out across instances when set
	Redis        *redis.Client
	RedisChannel string
	// Recorder receives stream lifecycle counts when set
	Recorder reactive.Recorder
	// Requests is the emitter fed by reactive.RequestEvents
	Requests       *reactive.Emitter[reactive.RequestEvent]
	SSEHeartbeat   time.Duration
	TickInterval   time.Duration
	DebounceWindow time.Duration
}

type Handlers struct {
	db       *reactive.ReactiveDB
	clock    scheduler.Scheduler
	opts     []reactive.Option
	redis    *redis.Client
	channel  string
	recorder reactive.Recorder
	created  *reactive.Emitter[models.Reading]
	live     reactive.Observable[models.Reading]
	requests *reactive.Emitter[reactive.RequestEvent]
	// requestFeed shares one listener on requests among all stream clients
	requestFeed reactive.Observable[reactive.RequestEvent]

	heartbeat time.Duration
	tick      time.Duration
	debounce  time.Duration
}

func NewHandlers(db *gorm.DB, o Options) *Handlers {
	clock := o.Scheduler
	if clock == nil {
		clock = scheduler.Default()
	}
	opts := []reactive.Option{reactive.WithScheduler(clock)}
	h := &Handlers{
		db:        reactive.NewReactiveDB(db, opts...),
		clock:     clock,
		opts:      opts,
		redis:     o.Redis,
		channel:   o.RedisChannel,
		recorder:  o.Recorder,
		created:   reactive.NewEmitter[models.Reading](),
		requests:  o.Requests,
		heartbeat: o.SSEHeartbeat,
		tick:      o.TickInterval,
		debounce:  o.DebounceWindow,
	}
	if h.channel == "" {
		h.channel = "lingrx:readings"
	}
	if h.tick <= 0 {
		h.tick = time.Second
	}
	if h.requests != nil {
		h.requestFeed = reactive.FromEvent[reactive.RequestEvent](h.requests, reactive.EventRequest)
	}
	if h.redis != nil {
		h.live = reactive.Pipe2(
			reactive.FromRedis(h.redis, []string{h.channel}, opts...),
			reactive.RedisPayloads(),
			reactive.TryMap(decodeReading),
		)
	} else {
		h.live = reactive.FromEvent[models.Reading](h.created, eventReadingCreated)
	}
	return h
}

func (h *Handlers) Register(engine *gin.Engine, prefix string) {
	r := engine.Group(prefix)

	r.GET("/readings", reactive.Handler(h.listReadings, h.opts...))
	r.POST("/readings", reactive.Handler(h.createReading, h.opts...))
	r.GET("/readings/latest/:sensor", reactive.Handler(h.latestReading, h.opts...))
	r.GET("/readings/summary", reactive.Handler(h.summary, h.opts...))
	r.GET("/readings/live", reactive.StreamHandler(h.liveReadings, h.heartbeat, h.opts...))

	r.GET("/convert", reactive.Handler(h.convert, h.opts...))
	r.GET("/convert/ws", h.convertSocket)

	r.GET("/ticks", reactive.StreamHandler(h.ticks, h.heartbeat, h.opts...))
	if h.requests != nil {
		r.GET("/requests/live", reactive.StreamHandler(h.liveRequests, h.heartbeat, h.opts...))
	}
}

// instrument is a pass-through when no recorder is configured
func instrument[T any](rec reactive.Recorder, stream string) reactive.Operator[T, T] {
	if rec == nil {
		return func(o reactive.Observable[T]) reactive.Observable[T] { return o }
	}
	return reactive.Instrument[T](stream, rec)
}
