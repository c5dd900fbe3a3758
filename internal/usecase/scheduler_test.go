package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"quizfeed/internal/domain"
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

func TestSchedulerRunsPipelineOnTrigger(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.extractor.pages[urlFor(1)] = []domain.QuestionRecord{record("Q?", "A", "x")}

	driver := &manualDriver{}
	s := NewScheduler(driver, h.pipeline(1), nil)

	var reports []domain.RunReport
	s.OnReport(func(r domain.RunReport) { reports = append(reports, r) })

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if driver.job == nil {
		t.Fatal("job was not registered")
	}

	driver.job(day(1))
	driver.job(day(1))

	if len(reports) != 2 || reports[0].Persisted != 1 || reports[1].Persisted != 0 {
		t.Fatalf("unexpected reports: %+v", reports)
	}

	if err := s.Stop(context.Background()); err != nil || !driver.stopped {
		t.Fatalf("Stop: err=%v stopped=%v", err, driver.stopped)
	}
}

func TestSchedulerSkipsOverlappingTrigger(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.extractor.delay = 50 * time.Millisecond
	h.extractor.pages[urlFor(1)] = []domain.QuestionRecord{record("Q?", "A", "x")}
	s := NewScheduler(&manualDriver{}, h.pipeline(1), nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Trigger(context.Background(), day(1))
	}()
	time.Sleep(10 * time.Millisecond)
	s.Trigger(context.Background(), day(1))
	wg.Wait()

	if len(h.store.docs) != 1 {
		t.Fatalf("expected a single article, got %d", len(h.store.docs))
	}
}

func TestSchedulerWithoutDriver(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil, nil, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
}
