// cmd/archiver/main.go is an asynchronous worker that pops committed round
// events from a Redis queue and persists them to the club_round_events audit
// table, and sweeps sessions left open past the inactivity threshold.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"github.com/gaolinyi828/mahjong-pro/internal/cache"
	"github.com/gaolinyi828/mahjong-pro/internal/database"
	"github.com/gaolinyi828/mahjong-pro/internal/models"
)

// ArchiverService encapsulates the Redis + DB logic for capturing round
// events and auto-closing sessions nobody is scoring anymore.
type ArchiverService struct {
	redisClient *redis.Client
	pool        *pgxpool.Pool
	batchSize   int
	flushDelay  time.Duration
	inactivity  time.Duration // duration until an idle open session is closed

	batchMu  sync.Mutex
	batch    []cache.RoundEventRecord
	ctx      context.Context
	cancelFn context.CancelFunc

	// persist writes one drained batch. Overridable so tests run the
	// batching paths without Postgres.
	persist func(ctx context.Context, batch []cache.RoundEventRecord) error
}

// NewArchiverService constructs an ArchiverService from environment variables or defaults.
func NewArchiverService() *ArchiverService {
	batchSize := getEnvInt("ARCHIVER_BATCH_SIZE", 20)
	flushMs := getEnvInt("ARCHIVER_FLUSH_MS", 500)
	inactivitySec := getEnvInt("SESSION_INACTIVITY_TIMEOUT_SEC", 6*3600)

	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithCancel(context.Background())
	as := &ArchiverService{
		redisClient: rdb,
		batchSize:   batchSize,
		flushDelay:  time.Duration(flushMs) * time.Millisecond,
		inactivity:  time.Duration(inactivitySec) * time.Second,
		batch:       make([]cache.RoundEventRecord, 0, batchSize),
		ctx:         ctx,
		cancelFn:    cancel,
	}
	as.persist = as.persistBatchToDB
	return as
}

// Run starts the two loops: the queue reader flushing round events to the
// audit table, and the periodic sweep for sessions idle past the threshold.
func (as *ArchiverService) Run() {
	pool, err := database.Connect(as.ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	as.pool = pool

	go as.readRedisLoop()
	go as.inactivityLoop()

	log.Println("club-archiver service started.")
	<-as.ctx.Done()
	log.Println("club-archiver shutting down.")
}

// readRedisLoop continuously uses BLPop to retrieve round events from the queue.
func (as *ArchiverService) readRedisLoop() {
	ticker := time.NewTicker(as.flushDelay)
	defer ticker.Stop()

	queueName := getEnv("ARCHIVER_QUEUE_NAME", cache.DefaultQueueName)

	for {
		select {
		case <-as.ctx.Done():
			return

		case <-ticker.C:
			as.flushBatchToDB()

		default:
			// BLPop with a 3-second timeout so context cancellation is handled.
			res, err := as.redisClient.BLPop(as.ctx, 3*time.Second, queueName).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				log.Printf("[ERROR] BLPop: %v\n", err)
				continue
			}
			if len(res) < 2 {
				continue
			}

			// res[0] is the queue name and res[1] the payload.
			var record cache.RoundEventRecord
			if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
				log.Printf("invalid round event: %v\n", err)
				continue
			}
			as.appendToBatch(record)
		}
	}
}

// appendToBatch adds a record to the in-memory batch and flushes if the threshold is reached.
func (as *ArchiverService) appendToBatch(record cache.RoundEventRecord) {
	as.batchMu.Lock()
	defer as.batchMu.Unlock()

	as.batch = append(as.batch, record)
	if len(as.batch) >= as.batchSize {
		as.flushLocked()
	}
}

// flushBatchToDB drains the current batch on the ticker path.
func (as *ArchiverService) flushBatchToDB() {
	as.batchMu.Lock()
	defer as.batchMu.Unlock()
	as.flushLocked()
}

// flushLocked writes and resets the pending batch. Callers hold batchMu;
// the mutex is not reentrant, so the threshold and ticker paths both come
// through here instead of locking twice.
func (as *ArchiverService) flushLocked() {
	if len(as.batch) == 0 {
		return
	}
	batchCopy := make([]cache.RoundEventRecord, len(as.batch))
	copy(batchCopy, as.batch)
	as.batch = as.batch[:0]

	if err := as.persist(context.Background(), batchCopy); err != nil {
		log.Printf("[ERROR] flush batch: %v\n", err)
	} else {
		log.Printf("Flushed %d round events to DB.\n", len(batchCopy))
	}
}

// persistBatchToDB writes one batch to the audit table in a single transaction.
func (as *ArchiverService) persistBatchToDB(ctx context.Context, batch []cache.RoundEventRecord) error {
	return pgx.BeginTxFunc(ctx, as.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range batch {
			if err := insertRoundEventTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insertRoundEventTx: %w", err)
			}
		}
		return nil
	})
}

// insertRoundEventTx appends one round event to club_round_events. The full
// record goes into the jsonb payload so the audit survives schema drift in
// the live tables.
func insertRoundEventTx(ctx context.Context, tx pgx.Tx, rec cache.RoundEventRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	q := `
		INSERT INTO club_round_events (round_id, session_id, payload)
		VALUES ($1, $2, $3)
	`
	_, err = tx.Exec(ctx, q, uuid.UUID(rec.RoundID), uuid.UUID(rec.SessionID), payload)
	return err
}

// inactivityLoop periodically closes any session still open whose last
// round (or opening, if no rounds landed) is older than the threshold.
// The sweep is the backstop for a table that scattered without pressing
// the close button.
func (as *ArchiverService) inactivityLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-as.ctx.Done():
			return

		case <-ticker.C:
			as.sweepStaleSessions()
		}
	}
}

// sessionStale reports whether a session last active at last should be
// auto-closed at now. A session exactly at the threshold is still live.
func sessionStale(last, now time.Time, inactivity time.Duration) bool {
	return now.Sub(last) > inactivity
}

func (as *ArchiverService) sweepStaleSessions() {
	ctx := context.Background()
	now := time.Now()

	// Last activity per open session: the newest round, or the opening
	// time when no rounds landed.
	q := `
		SELECT s.id, COALESCE(MAX(r.ts), s.start_time)
		FROM club_sessions s
		LEFT JOIN club_rounds r ON r.session_id = s.id
		WHERE s.is_active
		GROUP BY s.id, s.start_time
	`
	rows, err := as.pool.Query(ctx, q)
	if err != nil {
		log.Printf("[ERROR] sweepStaleSessions: %v\n", err)
		return
	}
	defer rows.Close()

	var stale []models.SessionID
	for rows.Next() {
		var id uuid.UUID
		var last time.Time
		if err := rows.Scan(&id, &last); err != nil {
			log.Printf("[ERROR] sweepStaleSessions: %v\n", err)
			return
		}
		if sessionStale(last, now, as.inactivity) {
			stale = append(stale, models.SessionID(id))
		}
	}
	if err := rows.Err(); err != nil {
		log.Printf("[ERROR] sweepStaleSessions: %v\n", err)
		return
	}

	closed := 0
	for _, id := range stale {
		err := pgx.BeginTxFunc(ctx, as.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
			closeQ := `
				UPDATE club_sessions
				SET is_active = FALSE, end_time = NOW()
				WHERE id = $1 AND is_active
			`
			_, e := tx.Exec(ctx, closeQ, uuid.UUID(id))
			return e
		})
		if err != nil {
			log.Printf("failed to close stale session %v: %v", id, err)
			continue
		}
		log.Printf("Closed session %v due to inactivity.", id)
		closed++
	}
	if closed > 0 {
		if err := cache.PublishChange(ctx, "sessions"); err != nil {
			log.Printf("[ERROR] change notice: %v\n", err)
		}
	}
}

// Stop gracefully stops the archiver service.
func (as *ArchiverService) Stop() {
	as.cancelFn()
}

func main() {
	if err := cache.ConnectRedis(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	as := NewArchiverService()
	go as.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	as.Stop()
	log.Println("Archiver shutdown complete.")
}

// getEnv retrieves an environment variable's value or returns a default.
func getEnv(key, defVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defVal
}

// getEnvInt retrieves an integer value from an environment variable or returns a default value.
func getEnvInt(key string, defVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defVal
	}
	return i
}
