package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/maheshrc27/postbridge/internal/models"
	"github.com/maheshrc27/postbridge/internal/service"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var ErrRunInProgress = errors.New("a posting run is already in progress")

// RandomSource picks the file to post. *rand.Rand satisfies it.
type RandomSource interface {
	IntN(n int) int
}

type NotifierFactory func(acc models.Account) service.Notifier

type PostJob struct {
	accounts  []models.Account
	storage   service.StorageProvider
	threads   service.ThreadsService
	captions  service.CaptionService
	notifiers NotifierFactory
	loc       *time.Location
	history   *RunHistory

	rand RandomSource
	now  func() time.Time

	mu       sync.Mutex
	notifyMu sync.Mutex
	cached   map[string]service.Notifier
}

func NewPostJob(
	accounts []models.Account,
	storage service.StorageProvider,
	threads service.ThreadsService,
	captions service.CaptionService,
	notifiers NotifierFactory,
	loc *time.Location) *PostJob {
	if loc == nil {
		loc = time.UTC
	}
	seed := uint64(time.Now().UnixNano())
	return &PostJob{
		accounts:  accounts,
		storage:   storage,
		threads:   threads,
		captions:  captions,
		notifiers: notifiers,
		loc:       loc,
		history:   NewRunHistory(),
		rand:      rand.New(rand.NewPCG(seed, seed>>1)),
		now:       time.Now,
		cached:    make(map[string]service.Notifier),
	}
}

func (j *PostJob) SetRandomSource(r RandomSource) {
	j.rand = r
}

func (j *PostJob) SetClock(now func() time.Time) {
	j.now = now
}

func (j *PostJob) History() *RunHistory {
	return j.history
}

func (j *PostJob) LastRuns() []models.RunOutcome {
	return j.history.Last()
}

// RunAll runs every account once, sequentially and in configured order.
// It returns ErrRunInProgress instead of overlapping a run already going.
func (j *PostJob) RunAll(ctx context.Context) ([]models.RunOutcome, error) {
	if !j.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer j.mu.Unlock()

	return j.runAll(ctx), nil
}

// Trigger starts RunAll in the background. It reports false when a run is
// already in progress.
func (j *PostJob) Trigger(ctx context.Context) bool {
	if !j.mu.TryLock() {
		return false
	}
	go func() {
		defer j.mu.Unlock()
		j.runAll(ctx)
	}()
	return true
}

// Wait blocks until any in-progress run has finished.
func (j *PostJob) Wait() {
	j.mu.Lock()
	defer j.mu.Unlock()
}

func (j *PostJob) runAll(ctx context.Context) []models.RunOutcome {
	slog.Info("Starting posting run", "accounts", len(j.accounts))

	outcomes := make([]models.RunOutcome, 0, len(j.accounts))
	for _, acc := range j.accounts {
		if err := ctx.Err(); err != nil {
			slog.Warn("Posting run cancelled", "remaining_from", acc.Name, "error", err)
			break
		}
		outcomes = append(outcomes, j.RunAccount(ctx, acc))
	}

	slog.Info("Posting run finished", "accounts", len(outcomes))
	return outcomes
}

func (j *PostJob) notifier(acc models.Account) service.Notifier {
	j.notifyMu.Lock()
	defer j.notifyMu.Unlock()

	if n, ok := j.cached[acc.Name]; ok {
		return n
	}
	n := j.notifiers(acc)
	j.cached[acc.Name] = n
	return n
}

// RunAccount runs the posting workflow for one account. Once a file has been
// selected it is deleted whether or not the post succeeded. The final
// duration notification is always sent.
func (j *PostJob) RunAccount(ctx context.Context, acc models.Account) (outcome models.RunOutcome) {
	start := j.now()
	runID, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
	}

	outcome = models.RunOutcome{
		RunID:     runID,
		Account:   acc.Name,
		State:     models.RunStateStart,
		StartedAt: start,
	}
	n := j.notifier(acc)
	step := models.StepCaption

	// Cleanup and the closing notifications must survive cancellation.
	cleanupCtx := context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Workflow panic", "account", acc.Name, "run_id", runID, "step", step, "panic", r)
			j.crash(cleanupCtx, n, &outcome, step, fmt.Errorf("panic: %v", r))
		}

		outcome.Duration = j.now().Sub(start)
		if outcome.Err != nil {
			outcome.Error = outcome.Err.Error()
		}
		n.Notify(cleanupCtx, slog.LevelInfo, fmt.Sprintf("🏁 Run complete in %.1f seconds", outcome.Duration.Seconds()))
		j.history.Record(outcome)

		slog.Info("Account run finished",
			"account", acc.Name,
			"run_id", runID,
			"state", outcome.State,
			"failed_step", outcome.FailedStep,
			"duration", outcome.Duration)
	}()

	n.Notify(ctx, slog.LevelInfo, fmt.Sprintf("📡 Threads Run started at: %s", start.In(j.loc).Format("2006-01-02 15:04:05")))

	caption := j.captions.Resolve(ctx, acc, start)
	outcome.State = models.RunStateCaptionResolved

	step = models.StepAuth
	session, err := j.storage.Open(ctx, acc)
	if err != nil {
		j.crash(cleanupCtx, n, &outcome, step, err)
		return outcome
	}
	outcome.State = models.RunStateAuthenticated

	step = models.StepList
	files, err := session.ListEligibleFiles(ctx)
	if err != nil {
		j.crash(cleanupCtx, n, &outcome, step, err)
		return outcome
	}
	outcome.State = models.RunStateFilesListed

	if len(files) == 0 {
		outcome.State = models.RunStateEmptyEnd
		n.Notify(ctx, slog.LevelInfo, "📭 No files found in storage folder.")
		return outcome
	}

	step = models.StepSelect
	file := files[j.rand.IntN(len(files))]
	outcome.File = &file
	outcome.State = models.RunStateFileSelected

	step = models.StepPublish
	result := j.publish(ctx, acc, session, n, file, caption, len(files)-1)
	outcome.Post = &result
	outcome.State = models.RunStatePublished
	if !result.Succeeded {
		outcome.FailedStep = models.StepPublish
		var stepErr *service.StepError
		if errors.As(result.Err, &stepErr) {
			outcome.FailedStep = stepErr.Step
		}
		outcome.Err = result.Err
	}

	step = models.StepDelete
	if err := session.Delete(cleanupCtx, file); err != nil {
		outcome.DeleteError = err.Error()
		n.Notify(cleanupCtx, slog.LevelWarn, fmt.Sprintf("⚠️ Failed to delete file %s: %v", file.Name, err))
	} else {
		n.Notify(cleanupCtx, slog.LevelInfo, fmt.Sprintf("🗑️ Deleted file after attempt: %s", file.Name))
	}
	outcome.State = models.RunStateCleanedUp

	outcome.State = models.RunStateDone
	return outcome
}

// publish never fails the run. A missing temporary link is a failed post,
// not a crash, so the selected file is still cleaned up.
func (j *PostJob) publish(
	ctx context.Context,
	acc models.Account,
	session service.StorageSession,
	n service.Notifier,
	file models.MediaFile,
	caption string,
	remaining int) models.PostResult {

	link, err := session.TemporaryLink(ctx, file)
	if err != nil {
		n.Notify(ctx, slog.LevelError, fmt.Sprintf("❌ Threads post failed: %s\n%v", file.Name, err))
		return models.PostResult{
			MediaType: service.MediaTypeFor(file, ""),
			Body:      err.Error(),
			Err:       &service.StepError{Step: models.StepLink, Err: fmt.Errorf("%w: %w", service.ErrPublish, err)},
		}
	}

	mediaType := service.MediaTypeFor(file, link)
	n.Notify(ctx, slog.LevelInfo, fmt.Sprintf("🚀 Uploading to Threads: %s\n📐 Type: %s (%s)\n📦 Remaining: %d", file.Name, mediaType, file.MIME, remaining))

	result := j.threads.Publish(ctx, acc.ThreadsUserID, acc.ThreadsAccessToken, caption, file, link)
	if result.Succeeded {
		n.Notify(ctx, slog.LevelInfo, fmt.Sprintf("✅ Successfully posted to Threads: %s", file.Name))
	} else {
		n.Notify(ctx, slog.LevelError, fmt.Sprintf("❌ Threads post failed: %s\n%s", file.Name, result.Body))
	}
	return result
}

func (j *PostJob) crash(ctx context.Context, n service.Notifier, outcome *models.RunOutcome, step models.RunStep, err error) {
	outcome.State = models.RunStateCrashed
	outcome.FailedStep = step
	outcome.Err = &service.StepError{Step: step, Err: err}
	n.Notify(ctx, slog.LevelError, fmt.Sprintf("❌ Script crashed: %v", err))
}
