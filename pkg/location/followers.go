package location

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/devmap/devmap/pkg/errors"
)

// FollowerBucket counts the accounts in a country with exactly Followers
// followers.
type FollowerBucket struct {
	Country   string  `json:"country"`
	Followers float64 `json:"followers"`
	Count     float64 `json:"count"`
}

// ReadFollowerDistribution parses a tab-separated follower distribution
// export with columns country, followers and count, ordered by descending
// follower count.
func ReadFollowerDistribution(r io.Reader) ([]FollowerBucket, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read header")
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}
	ci, fi, ni := indexOf(header, "country"), indexOf(header, "followers"), indexOf(header, "count")
	if ci < 0 || fi < 0 || ni < 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "follower distribution needs country, followers and count columns")
	}

	var out []FollowerBucket
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d", line)
		}
		if len(rec) <= max(ci, fi, ni) {
			continue
		}
		followers, err := parseNumber(strings.TrimSpace(rec[fi]))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d followers", line)
		}
		count, err := parseNumber(strings.TrimSpace(rec[ni]))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d count", line)
		}
		out = append(out, FollowerBucket{
			Country:   strings.TrimSpace(rec[ci]),
			Followers: followers,
			Count:     count,
		})
	}
	return out, nil
}

// ReadFollowerDistributionFile reads a follower distribution export from disk.
func ReadFollowerDistributionFile(path string) ([]FollowerBucket, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadFollowerDistribution(f)
}
