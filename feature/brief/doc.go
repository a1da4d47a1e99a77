// Package brief implements the BRIEF extractor variant: FAST corners
// described by a fixed set of intensity comparisons on a smoothed image.
//
// The comparison pattern is loaded once at construction so descriptors stay
// compatible with a vocabulary trained on the same pattern:
//
//	ex, err := brief.NewFromFile("resources/brief_pattern.yml", brief.WithMaxFeatures(300))
//	if err != nil {
//	    return err // errors.Is(err, feature.ErrConfiguration)
//	}
//	kps, descs, err := ex.Extract(img)
//
// Pattern files are YAML mappings with the integer sequences x1, y1, x2 and y2.
// A leading OpenCV "%YAML:1.0" directive is tolerated and gzip-compressed files
// are decompressed transparently.
package brief
