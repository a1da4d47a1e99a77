// Package loopgo detects loop closures: it recognizes when a camera revisits
// a place it has seen before.
//
// Every frame passes through a fixed sequence of filters. Its descriptors
// are quantized into a bag-of-words vector, scores may be normalized by the
// similarity to the previous frame, matching frames older than an exclusion
// window are fetched from a Database, and candidates are grouped into
// islands of neighbouring frames that must match over K consecutive queries.
// The best surviving candidate can finally be verified geometrically. Each
// call ends with exactly one Status.
//
// # Quick Start
//
//	voc, _ := bow.NewFlatVocabulary(words, weights, 10)
//	det, _ := loopgo.New[feature.Binary](voc, database.NewMemory(), loopgo.DefaultParameters(480, 640))
//
//	ex, _ := orb.New()
//	for _, img := range images {
//	    kps, descs, _ := ex.Extract(feature.ToGray(img))
//	    res, err := det.Detect(ctx, kps, descs)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if res.Detected() {
//	        fmt.Printf("frame %d revisits frame %d\n", res.Query, res.Match)
//	    }
//	}
//
// # Streams
//
// A Stream overlaps feature extraction of the next image with detection of
// the current one:
//
//	s := loopgo.NewStream(det, ex, loopgo.WithStride(15))
//	err := s.Run(ctx, images, func(r loopgo.StreamResult) error {
//	    fmt.Println(r.Index, r.Status)
//	    return nil
//	})
//
// # Parameters
//
// Parameters can be loaded from YAML:
//
//	image_width: 640
//	image_height: 480
//	use_nss: true
//	alpha: 0.3
//	k: 3
//	geometric_check: direct_index
//
// Missing keys keep the values of DefaultParameters.
//
// # Observability
//
// Structured logging and metrics are configured with WithLogger and
// WithMetricsCollector.
package loopgo
