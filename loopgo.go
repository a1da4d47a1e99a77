package loopgo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/loopgo/bow"
	"github.com/hupe1980/loopgo/core"
	"github.com/hupe1980/loopgo/feature"
	"github.com/hupe1980/loopgo/geometry"
	"github.com/hupe1980/loopgo/internal/temporal"
)

// Database stores the vectors of processed frames.
type Database interface {
	// Add stores the vector of frame.
	Add(ctx context.Context, frame core.FrameID, vec bow.Vector) error
	// Query returns up to maxResults frames no later than maxFrame that share
	// a word with vec, ranked by score descending then frame ascending.
	// maxResults <= 0 means unbounded.
	Query(ctx context.Context, vec bow.Vector, maxResults int, maxFrame core.FrameID) ([]bow.Result, error)
}

// Query is one processed frame. Detector retains every query for its
// lifetime; the keypoint and descriptor slices must not be modified after
// they were passed to Detect.
type Query[D feature.Descriptor] struct {
	Frame       core.FrameID
	Vector      bow.Vector
	Direct      bow.DirectIndex
	Keypoints   []feature.Keypoint
	Descriptors []D
	Timestamp   time.Time
}

// Candidate is a database match of the current query.
type Candidate struct {
	Frame core.FrameID
	// Score is the raw database score.
	Score float64
	// Normalized is Score divided by the NSS reference, or Score when
	// normalization is off or was skipped.
	Normalized float64
}

// DetectionResult is the outcome of one Detect call.
type DetectionResult struct {
	Status Status
	// Query is the frame assigned to the call.
	Query core.FrameID
	// Match is the revisited frame. Only valid when Status is LoopDetected.
	Match core.FrameID
	// Score is the normalized score of the considered candidate, or the NSS
	// reference score on LowNSSFactor.
	Score float64
	// Candidate is the best candidate of the last stage that had any. It is
	// kept on rejections for diagnostics.
	Candidate *Candidate
	// ChainLength is the temporal chain length of the selected island.
	ChainLength int
	// Inliers is the number of correspondences supporting the match.
	Inliers int
	// OnlyRecent is set on NoDBResults when no frame was outside the
	// exclusion window yet.
	OnlyRecent bool
}

// Detected reports whether the result is a loop.
func (r DetectionResult) Detected() bool { return r.Status == LoopDetected }

// Detector finds loop closures in a stream of frames.
//
// Calls are serialized; frame ids follow call order.
type Detector[D feature.Descriptor] struct {
	mu sync.Mutex

	params   Parameters
	builder  *bow.Builder[D]
	db       Database
	verifier geometry.Verifier
	window   *temporal.Window
	history  []*Query[D]

	logger  *Logger
	metrics MetricsCollector
	clock   func() time.Time
}

// New creates a Detector that quantizes descriptors with voc and keeps frame
// vectors in db.
//
// Frame ids start at 0 and the query history lives only in the Detector, so
// db must be empty. A database that reports a positive Size is rejected.
func New[D feature.Descriptor](voc bow.Vocabulary[D], db Database, params Parameters, optFns ...Option) (*Detector[D], error) {
	if voc == nil {
		return nil, &ParameterError{Field: "vocabulary", cause: errors.New("must not be nil")}
	}
	if db == nil {
		return nil, &ParameterError{Field: "database", cause: errors.New("must not be nil")}
	}
	if s, ok := db.(interface{ Size() int }); ok && s.Size() > 0 {
		return nil, invalid("database", "must be empty, holds %d frames", s.Size())
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	opts := applyOptions(optFns)

	if opts.vocabularyCache > 0 {
		voc = bow.NewCachingVocabulary(voc, opts.vocabularyCache)
	}

	verifier := opts.verifier
	if verifier == nil && params.GeometricCheck != GeometryNone {
		verifier = geometry.NewFundamentalVerifier(geometry.FundamentalConfig{
			Width:         params.ImageWidth,
			Height:        params.ImageHeight,
			MinInliers:    params.MinFPoints,
			MaxIterations: params.MaxRANSACIterations,
			Probability:   params.RANSACProbability,
			Threshold:     params.MaxReprojectionError,
			Seed:          params.RANSACSeed,
		})
	}

	return &Detector[D]{
		params:   params,
		builder:  bow.NewBuilder(voc, params.GeometricCheck == GeometryDirectIndex, params.DirectIndexLevels),
		db:       db,
		verifier: verifier,
		window:   temporal.NewWindow(params.MaxDistanceBetweenQueries, params.MaxDistanceBetweenGroups),
		logger:   opts.logger,
		metrics:  opts.metricsCollector,
		clock:    opts.clock,
	}, nil
}

// Parameters returns the configuration of d.
func (d *Detector[D]) Parameters() Parameters { return d.params }

// Len returns the number of processed frames.
func (d *Detector[D]) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.history)
}

// Frame returns a processed frame.
func (d *Detector[D]) Frame(id core.FrameID) (*Query[D], bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if int(id) >= len(d.history) {
		return nil, false
	}
	return d.history[id], true
}

// Detect processes the next frame and classifies it. The frame is recorded
// and added to the database on every path except malformed input, which
// returns an error matching ErrInvariantViolation. Rejections are statuses,
// not errors; an error is only returned when the database fails.
func (d *Detector[D]) Detect(ctx context.Context, keypoints []feature.Keypoint, descriptors []D) (DetectionResult, error) {
	if len(keypoints) != len(descriptors) {
		return DetectionResult{}, &ErrLengthMismatch{Keypoints: len(keypoints), Descriptors: len(descriptors)}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	start := d.clock()

	vec, di := d.builder.Build(descriptors)
	q := &Query[D]{
		Frame:       core.FrameID(len(d.history)),
		Vector:      vec,
		Direct:      di,
		Keypoints:   keypoints,
		Descriptors: descriptors,
		Timestamp:   start,
	}
	var prev *Query[D]
	if len(d.history) > 0 {
		prev = d.history[len(d.history)-1]
	}
	d.history = append(d.history, q)

	res, err := d.detect(ctx, q, prev)
	if err != nil {
		res.Status = StatusUnknown
	}
	// The frame is stored after the lookup so it never matches itself.
	if addErr := d.db.Add(ctx, q.Frame, q.Vector); addErr != nil {
		err = errors.Join(err, fmt.Errorf("add frame %d: %w", q.Frame, addErr))
	}

	d.metrics.RecordDetection(res.Status, d.clock().Sub(start), err)
	d.logger.LogDetection(ctx, res, err)
	return res, err
}

func (d *Detector[D]) detect(ctx context.Context, q, prev *Query[D]) (DetectionResult, error) {
	res := DetectionResult{Query: q.Frame}

	if len(q.Vector) == 0 {
		res.Status = NoDBResults
		return res, nil
	}

	ref, normalize := 1.0, false
	if d.params.UseNSS && prev != nil {
		ref, normalize = bow.Score(q.Vector, prev.Vector), true
		// A zero reference leaves nothing to normalize by.
		if ref <= 0 || ref < d.params.MinNSSFactor {
			res.Status, res.Score = LowNSSFactor, ref
			return res, nil
		}
	}

	if int(q.Frame) < d.params.ExclusionWindow {
		res.Status, res.OnlyRecent = NoDBResults, q.Frame > 0
		return res, nil
	}
	maxFrame := q.Frame - core.FrameID(d.params.ExclusionWindow)

	results, err := d.db.Query(ctx, q.Vector, d.params.MaxDBResults, maxFrame)
	if err != nil {
		return res, fmt.Errorf("query database: %w", err)
	}
	if len(results) == 0 {
		res.Status = NoDBResults
		return res, nil
	}

	byFrame := make(map[core.FrameID]Candidate, len(results))
	kept := make([]bow.Result, 0, len(results))
	for _, r := range results {
		c := Candidate{Frame: r.Frame, Score: r.Score, Normalized: r.Score}
		if normalize {
			c.Normalized = r.Score / ref
		}
		byFrame[r.Frame] = c
		if c.Normalized >= d.params.Alpha {
			kept = append(kept, bow.Result{Frame: r.Frame, Score: c.Normalized})
		}
	}

	// Results are ranked, so the first one is the best.
	best := byFrame[results[0].Frame]
	res.Candidate, res.Score = &best, best.Normalized
	if len(kept) == 0 {
		res.Status = LowScores
		return res, nil
	}

	islands := temporal.ComputeIslands(kept, d.params.MaxIntraGroupGap, d.params.MinMatchesPerGroup)
	if len(islands) == 0 {
		res.Status = NoGroups
		return res, nil
	}

	chains := d.window.Update(q.Frame, islands)

	var chosen *temporal.Chain
	for i := range chains {
		if chains[i].Length >= d.params.K {
			chosen = &chains[i]
			break
		}
	}
	if chosen == nil {
		top := chains[0]
		for _, c := range chains[1:] {
			if c.BestScore > top.BestScore {
				top = c
			}
		}
		res.Status, res.ChainLength = NoTemporalConsistency, top.Length
		d.setCandidate(&res, byFrame[top.Best])
		return res, nil
	}

	res.ChainLength = chosen.Length
	d.setCandidate(&res, byFrame[chosen.Best])

	if d.params.GeometricCheck != GeometryNone {
		inliers, ok := d.verify(q, d.history[chosen.Best])
		res.Inliers = inliers
		if !ok {
			res.Status = NoGeometricalConsistency
			return res, nil
		}
	}

	res.Status, res.Match = LoopDetected, chosen.Best
	return res, nil
}

func (d *Detector[D]) setCandidate(res *DetectionResult, c Candidate) {
	res.Candidate, res.Score = &c, c.Normalized
}

// verify matches q against the candidate frame and runs the verifier.
func (d *Detector[D]) verify(q, train *Query[D]) (int, bool) {
	qf := geometry.Frame[D]{Keypoints: q.Keypoints, Descriptors: q.Descriptors}
	tf := geometry.Frame[D]{Keypoints: train.Keypoints, Descriptors: train.Descriptors}
	opts := geometry.MatchOptions{
		MaxDistance: d.params.MaxDescriptorDistance,
		MaxRatio:    d.params.MaxNeighborRatio,
	}

	var corrs []geometry.Correspondence
	if d.params.GeometricCheck == GeometryDirectIndex {
		corrs = geometry.MatchDirect(qf, tf, q.Direct, train.Direct, opts)
	} else {
		corrs = geometry.Match(qf, tf, opts)
	}

	if len(corrs) < d.params.MinFPoints {
		return len(corrs), false
	}
	if iv, ok := d.verifier.(geometry.InlierVerifier); ok {
		return iv.VerifyInliers(corrs)
	}
	return len(corrs), d.verifier.Verify(corrs)
}
