package pipeline

import (
	"math/rand/v2"
	"regexp"
	"strings"
	"time"
)

var bucketUnsafe = regexp.MustCompile(`[^a-z0-9-]`)

const (
	bucketBaseMax     = 30
	bucketSuffixChars = "abcdefghijklmnopqrstuvwxyz0123456789"
	bucketSuffixLen   = 6
)

// BucketName derives a fresh storage base name for a project:
// <project[:30]>-<yy-mm-dd>-<6 random [a-z0-9]>.
func BucketName(projectName string, now time.Time) string {
	base := bucketUnsafe.ReplaceAllString(strings.ToLower(projectName), "-")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "project"
	}
	if len(base) > bucketBaseMax {
		base = strings.TrimRight(base[:bucketBaseMax], "-")
	}

	suffix := make([]byte, bucketSuffixLen)
	for i := range suffix {
		suffix[i] = bucketSuffixChars[rand.IntN(len(bucketSuffixChars))]
	}
	return base + "-" + now.Format("06-01-02") + "-" + string(suffix)
}
