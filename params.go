package loopgo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// GeometricCheck selects how the best candidate is verified.
type GeometricCheck uint8

const (
	// GeometryNone accepts temporally consistent candidates without verification.
	GeometryNone GeometricCheck = iota
	// GeometryFundamentalMatrix matches every query descriptor against every
	// candidate descriptor before verification.
	GeometryFundamentalMatrix
	// GeometryDirectIndex only matches descriptors that share a vocabulary node.
	GeometryDirectIndex
)

var geometricCheckNames = []string{"none", "fundamental_matrix", "direct_index"}

func (g GeometricCheck) String() string {
	if int(g) < len(geometricCheckNames) {
		return geometricCheckNames[g]
	}
	return fmt.Sprintf("GeometricCheck(%d)", g)
}

// MarshalText implements encoding.TextMarshaler.
func (g GeometricCheck) MarshalText() ([]byte, error) {
	if int(g) >= len(geometricCheckNames) {
		return nil, fmt.Errorf("unknown geometric check %d", g)
	}
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *GeometricCheck) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range geometricCheckNames {
		if n == name {
			*g = GeometricCheck(i)
			return nil
		}
	}
	return fmt.Errorf("unknown geometric check %q", text)
}

// Parameters configures a Detector. They are copied at construction.
type Parameters struct {
	// ImageWidth and ImageHeight normalize coordinates during verification.
	ImageWidth  int `yaml:"image_width"`
	ImageHeight int `yaml:"image_height"`

	// UseNSS divides scores by the score between the query and its predecessor.
	UseNSS bool `yaml:"use_nss"`
	// Alpha is the minimum (normalized) score of a candidate.
	Alpha float64 `yaml:"alpha"`
	// K is the number of consecutive queries an island must match.
	K int `yaml:"k"`
	// GeometricCheck selects the verification stage.
	GeometricCheck GeometricCheck `yaml:"geometric_check"`
	// DirectIndexLevels is how far above the words the direct index groups
	// keypoints. 0 indexes words.
	DirectIndexLevels int `yaml:"direct_index_levels"`
	// ExclusionWindow is the minimum frame distance of an eligible candidate.
	ExclusionWindow int `yaml:"exclusion_window"`

	MinNSSFactor float64 `yaml:"min_nss_factor"`
	// MaxDBResults bounds the candidates per query. 0 means unbounded.
	MaxDBResults int `yaml:"max_db_results"`

	MaxIntraGroupGap          int `yaml:"max_intra_group_gap"`
	MinMatchesPerGroup        int `yaml:"min_matches_per_group"`
	MaxDistanceBetweenGroups  int `yaml:"max_distance_between_groups"`
	MaxDistanceBetweenQueries int `yaml:"max_distance_between_queries"`

	// MinFPoints is the number of inliers a loop needs.
	MinFPoints           int     `yaml:"min_f_points"`
	MaxRANSACIterations  int     `yaml:"max_ransac_iterations"`
	RANSACProbability    float64 `yaml:"ransac_probability"`
	MaxReprojectionError float64 `yaml:"max_reprojection_error"`
	RANSACSeed           int64   `yaml:"ransac_seed"`

	MaxNeighborRatio float64 `yaml:"max_neighbor_ratio"`
	// MaxDescriptorDistance is in native descriptor units (bits for binary
	// descriptors). 0 disables the limit.
	MaxDescriptorDistance float64 `yaml:"max_descriptor_distance"`
}

// DefaultParameters returns the standard tuning for images of the given size.
func DefaultParameters(height, width int) Parameters {
	return Parameters{
		ImageWidth:                width,
		ImageHeight:               height,
		UseNSS:                    true,
		Alpha:                     0.3,
		K:                         3,
		GeometricCheck:            GeometryDirectIndex,
		DirectIndexLevels:         0,
		ExclusionWindow:           20,
		MinNSSFactor:              0.005,
		MaxDBResults:              50,
		MaxIntraGroupGap:          3,
		MinMatchesPerGroup:        1,
		MaxDistanceBetweenGroups:  3,
		MaxDistanceBetweenQueries: 2,
		MinFPoints:                12,
		MaxRANSACIterations:       500,
		RANSACProbability:         0.99,
		MaxReprojectionError:      2.0,
		MaxNeighborRatio:          0.6,
		MaxDescriptorDistance:     80,
	}
}

// Validate reports the first invalid field.
func (p Parameters) Validate() error {
	switch {
	case p.ImageWidth < 0:
		return invalid("image_width", "must not be negative, got %d", p.ImageWidth)
	case p.ImageHeight < 0:
		return invalid("image_height", "must not be negative, got %d", p.ImageHeight)
	case p.Alpha < 0:
		return invalid("alpha", "must not be negative, got %g", p.Alpha)
	case p.K < 1:
		return invalid("k", "must be at least 1, got %d", p.K)
	case int(p.GeometricCheck) >= len(geometricCheckNames):
		return invalid("geometric_check", "unknown value %d", p.GeometricCheck)
	case p.DirectIndexLevels < 0:
		return invalid("direct_index_levels", "must not be negative, got %d", p.DirectIndexLevels)
	case p.ExclusionWindow < 0:
		return invalid("exclusion_window", "must not be negative, got %d", p.ExclusionWindow)
	case p.MinNSSFactor < 0:
		return invalid("min_nss_factor", "must not be negative, got %g", p.MinNSSFactor)
	case p.MaxDBResults < 0:
		return invalid("max_db_results", "must not be negative, got %d", p.MaxDBResults)
	case p.MaxIntraGroupGap < 1:
		return invalid("max_intra_group_gap", "must be at least 1, got %d", p.MaxIntraGroupGap)
	case p.MinMatchesPerGroup < 1:
		return invalid("min_matches_per_group", "must be at least 1, got %d", p.MinMatchesPerGroup)
	case p.MaxDistanceBetweenGroups < 0:
		return invalid("max_distance_between_groups", "must not be negative, got %d", p.MaxDistanceBetweenGroups)
	case p.MaxDistanceBetweenQueries < 1:
		return invalid("max_distance_between_queries", "must be at least 1, got %d", p.MaxDistanceBetweenQueries)
	case p.MinFPoints < 0:
		return invalid("min_f_points", "must not be negative, got %d", p.MinFPoints)
	case p.MaxRANSACIterations < 1:
		return invalid("max_ransac_iterations", "must be at least 1, got %d", p.MaxRANSACIterations)
	case p.RANSACProbability <= 0 || p.RANSACProbability >= 1:
		return invalid("ransac_probability", "must be in (0, 1), got %g", p.RANSACProbability)
	case p.MaxReprojectionError <= 0:
		return invalid("max_reprojection_error", "must be positive, got %g", p.MaxReprojectionError)
	case p.MaxNeighborRatio < 0 || p.MaxNeighborRatio > 1:
		return invalid("max_neighbor_ratio", "must be in [0, 1], got %g", p.MaxNeighborRatio)
	case p.MaxDescriptorDistance < 0:
		return invalid("max_descriptor_distance", "must not be negative, got %g", p.MaxDescriptorDistance)
	}
	return nil
}

// ParseParameters decodes YAML over DefaultParameters(0, 0) and validates the
// result. Unknown keys are rejected.
func ParseParameters(data []byte) (Parameters, error) {
	p := DefaultParameters(0, 0)

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Parameters{}, &ParameterError{Field: "yaml", cause: err}
	}

	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}

// LoadParameters reads a YAML parameter file.
func LoadParameters(path string) (Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Parameters{}, &ParameterError{Field: path, cause: err}
	}
	return ParseParameters(data)
}

// YAML encodes p in the format ParseParameters reads.
func (p Parameters) YAML() ([]byte, error) {
	return yaml.Marshal(p)
}
