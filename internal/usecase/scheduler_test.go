package usecase

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/logging"
)

type manualDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *manualDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func TestSchedulerKeepsRunningAfterFailure(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	renderer := &fakeRenderer{}
	p := newTestPipeline(src, nil, renderer, nil)
	dir := t.TempDir()

	var triggers []time.Time
	opts := func(trigger time.Time) RunOptions {
		triggers = append(triggers, trigger)
		return RunOptions{
			Sources: []domain.FeedSource{{Name: "blog"}},
			Hours:   48,
			TopN:    2,
			Lang:    "en",
			Output:  filepath.Join(dir, "digest-"+trigger.Format("20060102")+".md"),
		}
	}

	driver := &manualDriver{}
	sched := NewScheduler(driver, p, opts, logging.Discard())
	require.NoError(t, sched.Start(context.Background()))
	require.NotNil(t, driver.job)

	// nothing fetched: the run fails and is only logged
	driver.job(pipelineNow)
	assert.Empty(t, renderer.digest.RunID)

	src.articles = recentArticles()
	next := pipelineNow.Add(24 * time.Hour)
	driver.job(next)
	assert.NotEmpty(t, renderer.digest.RunID)
	assert.Len(t, renderer.digest.Articles, 2)
	assert.FileExists(t, filepath.Join(dir, "digest-20240603.md"))

	assert.Equal(t, []time.Time{pipelineNow, next}, triggers)

	require.NoError(t, sched.Stop(context.Background()))
	assert.True(t, driver.stopped)
}

func TestSchedulerWithoutDriverIsNoop(t *testing.T) {
	t.Parallel()

	sched := NewScheduler(nil, nil, nil, nil)
	assert.NoError(t, sched.Start(context.Background()))
	assert.NoError(t, sched.Stop(context.Background()))
}
