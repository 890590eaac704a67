package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ganot/hrv-ingest/internal/domain/activity"
	"github.com/ganot/hrv-ingest/internal/domain/ingestlog"
	"github.com/ganot/hrv-ingest/internal/domain/loader"
	"github.com/ganot/hrv-ingest/internal/domain/measurement"
	"github.com/ganot/hrv-ingest/internal/domain/participant"
	"github.com/ganot/hrv-ingest/internal/domain/report"
	"github.com/ganot/hrv-ingest/internal/domain/timeline"
	"github.com/google/uuid"
)

// Recorder receives pipeline measurements.
type Recorder interface {
	SessionProcessed(status string)
	RowsWritten(table, outcome string, n int)
	ExtractionMiss(kind string)
	ObserveStep(step string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) SessionProcessed(string)           {}
func (nopRecorder) RowsWritten(string, string, int)   {}
func (nopRecorder) ExtractionMiss(string)             {}
func (nopRecorder) ObserveStep(string, time.Duration) {}

// Settings tune how sessions are read.
type Settings struct {
	// Location interprets the wall-clock times of logs, reports and
	// protocols.
	Location   *time.Location
	MinGapMS   int
	MaxGapMS   int
	Precedence []report.Kind
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithJournal records every step outcome in the ingest log.
func WithJournal(j *ingestlog.Service) Option {
	return func(p *Pipeline) { p.journal = j }
}

// WithRecorder reports pipeline measurements to r.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithIDFunc overrides measurement id generation. By default ids are
// derived from the user id and the log content, see timeline.StableID.
func WithIDFunc(f timeline.IDFunc) Option {
	return func(p *Pipeline) { p.newID = f }
}

// Pipeline ingests session folders one at a time.
type Pipeline struct {
	settings  Settings
	resolver  participant.Resolver
	extractor *report.Extractor
	loader    *loader.Loader
	journal   *ingestlog.Service
	recorder  Recorder
	logger    *slog.Logger
	newID     timeline.IDFunc
}

// NewPipeline creates a pipeline.
func NewPipeline(settings Settings, resolver participant.Resolver, extractor *report.Extractor, l *loader.Loader, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.Precedence == nil {
		settings.Precedence = report.DefaultPrecedence
	}
	if settings.MaxGapMS == 0 {
		settings.MaxGapMS = timeline.DefaultMaxGapMS
	}
	p := &Pipeline{
		settings:  settings,
		resolver:  resolver,
		extractor: extractor,
		loader:    l,
		recorder:  nopRecorder{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run discovers and ingests every session under root. Session failures are
// reported in the result; the returned error covers discovery and
// cancellation only.
func (p *Pipeline) Run(ctx context.Context, root string) (*Report, error) {
	sessions, err := Discover(root)
	if err != nil {
		return nil, err
	}

	rep := &Report{RunID: uuid.NewString(), Root: root, StartedAt: time.Now().UTC()}
	p.logger.Info("ingest run started", "run_id", rep.RunID, "root", root, "sessions", len(sessions))

	for _, s := range sessions {
		if err := ctx.Err(); err != nil {
			rep.FinishedAt = time.Now().UTC()
			return rep, err
		}
		if s.Log == "" {
			p.logger.Info("no interval log, ignoring folder", "dir", s.Dir)
			rep.Ignored = append(rep.Ignored, s.Dir)
			continue
		}
		rep.Sessions = append(rep.Sessions, p.ProcessSession(ctx, rep.RunID, s))
	}

	rep.FinishedAt = time.Now().UTC()
	counts := rep.Counts()
	p.logger.Info("ingest run finished",
		"run_id", rep.RunID,
		"inserted", counts[loader.OutcomeInserted],
		"skipped", counts[loader.OutcomeSkipped],
		"failed", counts[loader.OutcomeFailed],
		"ignored", len(rep.Ignored),
	)
	return rep, nil
}

// ProcessSession ingests one session folder. The user, raw samples and
// processed metrics are written as separate record sets, so a failure in
// one does not prevent the others.
func (p *Pipeline) ProcessSession(ctx context.Context, runID string, s SessionDir) (res SessionResult) {
	res = SessionResult{Dir: s.Dir, Log: s.Log}
	logger := p.logger.With("source", s.Log)
	defer func() {
		res.settle()
		p.recorder.SessionProcessed(string(res.Status))
		logger.Info("session processed", "status", string(res.Status), "measurement_id", res.MeasurementID)
	}()
	for _, extra := range s.Extra {
		res.Warnings = append(res.Warnings, "ignored additional interval log "+extra)
	}

	session, user, err := p.readSession(s, &res)
	if err != nil {
		logger.Error("session could not be read", "error", err)
		p.record(ctx, runID, &res, StepResult{
			Step:   ingestlog.StepRead,
			Status: loader.OutcomeFailed,
			Class:  Classify(err),
			Error:  err.Error(),
		})
		return res
	}
	res.MeasurementID = session.MeasurementID
	res.UserID = user.ID
	res.Samples = len(session.Samples)
	logger = logger.With("measurement_id", session.MeasurementID, "user_id", user.ID)

	comment := p.doctorComment(s, &res)
	labels := p.tag(session, s, &res)
	rows := measurement.NewRawSamples(session, user.ID, labels, comment)

	p.write(ctx, runID, &res, ingestlog.StepUser, 1, func() (loader.Outcome, error) {
		return p.loader.EnsureUser(ctx, user)
	})
	p.write(ctx, runID, &res, ingestlog.StepRawSamples, len(rows), func() (loader.Outcome, error) {
		return p.loader.LoadRawSamples(ctx, user, rows)
	})

	fields, ok := p.extract(s, &res)
	if !ok {
		p.record(ctx, runID, &res, StepResult{
			Step:   ingestlog.StepProcessed,
			Status: loader.OutcomeSkipped,
			Class:  ClassNotFound,
			Error:  "no report documents",
		})
		return res
	}
	processed := measurement.NewProcessed(session, user.ID, fields, p.settings.Location)
	if _, dated := measurement.MeasuredAt(fields, p.settings.Location); !dated {
		res.Warnings = append(res.Warnings, "no measurement date in reports, using session start")
	}
	p.write(ctx, runID, &res, ingestlog.StepProcessed, 1, func() (loader.Outcome, error) {
		return p.loader.LoadProcessed(ctx, user, processed)
	})
	return res
}

func (p *Pipeline) readSession(s SessionDir, res *SessionResult) (*timeline.Session, participant.User, error) {
	userID, err := p.resolver.Resolve(s.Log)
	if err != nil {
		return nil, participant.User{}, err
	}
	log, err := ReadIntervalLog(s.Log, p.settings.Location)
	if err != nil {
		return nil, participant.User{}, err
	}
	for _, issue := range timeline.CheckGaps(log.Gaps, p.settings.MinGapMS, p.settings.MaxGapMS) {
		res.Warnings = append(res.Warnings, "implausible interval "+issue.String())
	}
	newID := p.newID
	if newID == nil {
		newID = timeline.StableID(userID, log)
	}
	session, err := timeline.NewSession(log, newID)
	if err != nil {
		return nil, participant.User{}, err
	}

	user := participant.User{ID: userID}
	if s.Participant == "" {
		res.Warnings = append(res.Warnings, "no participant file, storing user without attributes")
		return session, user, nil
	}
	attrs, err := ReadParticipant(s.Participant)
	if err == nil {
		user, err = attrs.User(userID)
	}
	if err != nil {
		res.Warnings = append(res.Warnings, "participant attributes ignored: "+err.Error())
		user = participant.User{ID: userID}
	}
	return session, user, nil
}

func (p *Pipeline) doctorComment(s SessionDir, res *SessionResult) string {
	if s.Meta == "" {
		return ""
	}
	meta, err := ReadSessionMeta(s.Meta)
	if err != nil {
		res.Warnings = append(res.Warnings, "session metadata ignored: "+err.Error())
		return ""
	}
	return meta.DoctorComment
}

// tag labels the session samples from its activity protocol. Without a
// usable protocol every sample stays unlabeled.
func (p *Pipeline) tag(session *timeline.Session, s SessionDir, res *SessionResult) []*string {
	if s.Protocol == "" {
		res.Documents = append(res.Documents, DocumentResult{
			Kind:  report.KindActivityProtocol,
			Class: ClassNotFound,
			Error: "no activity protocol",
		})
		return nil
	}

	doc := DocumentResult{Kind: report.KindActivityProtocol, Source: filepath.Base(s.Protocol)}
	defer func() { res.Documents = append(res.Documents, doc) }()

	rows, err := ReadTable(s.Protocol)
	if err == nil {
		var (
			intervals []activity.Interval
			issues    []activity.RowIssue
		)
		intervals, issues, err = activity.ParseProtocol(rows)
		for _, issue := range issues {
			doc.Misses = append(doc.Misses, report.Miss{Field: fmt.Sprintf("row %d", issue.Row), Reason: issue.Reason})
		}
		if err == nil {
			doc.Fields = len(intervals)
			schedule := activity.Anchor(session.Start, intervals)
			for _, o := range schedule.Overlaps() {
				res.Warnings = append(res.Warnings, fmt.Sprintf("activity %q overlaps %q, earlier row wins", o.First.Label, o.Second.Label))
			}
			return activity.Tag(session.Timestamps(), schedule)
		}
	}
	doc.Class = Classify(err)
	doc.Error = err.Error()
	return nil
}

// extract runs the report rules over every available document and merges
// the results. It reports false when no document could be read.
func (p *Pipeline) extract(s SessionDir, res *SessionResult) (report.Fields, bool) {
	var parts []report.Extraction
	for _, kind := range []report.Kind{report.KindMedAnalysis, report.KindVitals, report.KindOverview} {
		path, ok := s.Documents[kind]
		if !ok {
			res.Documents = append(res.Documents, DocumentResult{Kind: kind, Class: ClassNotFound, Error: "no " + string(kind) + " report"})
			continue
		}
		doc, err := ReadDocument(kind, path)
		if err != nil {
			res.Documents = append(res.Documents, DocumentResult{Kind: kind, Source: filepath.Base(path), Class: Classify(err), Error: err.Error()})
			continue
		}
		ex := p.extractor.Extract(doc, report.Catalog(kind))
		for range ex.Misses {
			p.recorder.ExtractionMiss(string(kind))
		}
		for _, a := range ex.Ambiguous {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s %s: %s", kind, a.Field, a.Reason))
		}
		res.Documents = append(res.Documents, DocumentResult{
			Kind:      kind,
			Source:    doc.Source,
			Fields:    len(ex.Fields),
			Misses:    ex.Misses,
			Ambiguous: ex.Ambiguous,
		})
		parts = append(parts, ex)
	}
	if len(parts) == 0 {
		return nil, false
	}

	merged, collisions := report.Merge(p.settings.Precedence, parts)
	res.Collisions = collisions
	for _, c := range collisions {
		p.logger.Warn("report field collision",
			"source", s.Log,
			"field", c.Field,
			"kept", string(c.Kept),
			"overwritten", string(c.Overwritten),
		)
	}
	return report.ApplySignConvention(merged), true
}

func (p *Pipeline) write(ctx context.Context, runID string, res *SessionResult, step ingestlog.Step, rows int, fn func() (loader.Outcome, error)) {
	start := time.Now()
	out, err := fn()
	elapsed := time.Since(start)
	p.recorder.ObserveStep(string(step), elapsed)
	p.recorder.RowsWritten(string(step), string(out), rows)

	sr := StepResult{Step: step, Status: out, Rows: rows, Duration: elapsed}
	if err != nil {
		sr.Class = Classify(err)
		sr.Error = err.Error()
		p.logger.Error("ingest step failed",
			"source", res.Log,
			"step", string(step),
			"measurement_id", res.MeasurementID,
			"user_id", res.UserID,
			"error", err,
		)
	}
	p.record(ctx, runID, res, sr)
}

// record appends sr to res and mirrors it into the ingest log.
func (p *Pipeline) record(ctx context.Context, runID string, res *SessionResult, sr StepResult) {
	res.Steps = append(res.Steps, sr)
	if p.journal == nil {
		return
	}

	entry := &ingestlog.Entry{
		RunID:      runID,
		Source:     res.Log,
		Step:       sr.Step,
		Status:     ingestlog.Status(sr.Status),
		ErrorClass: string(sr.Class),
		Message:    sr.Error,
	}
	if res.MeasurementID != "" {
		id := res.MeasurementID
		entry.MeasurementID = &id
	}
	if res.UserID != 0 {
		uid := res.UserID
		entry.UserID = &uid
	}
	if err := p.journal.Record(ctx, entry); err != nil {
		p.logger.Warn("ingest log entry not stored", "step", string(sr.Step), "error", err)
	}
}
