package snapshot

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"browsermcp/pkg/config"
)

// TierWeights are cumulative ceilings, as fractions of the budget, up to
// which each tier may fill the output. Headroom a tier leaves unused is not
// handed to the next one.
type TierWeights struct {
	Critical  float64
	Important float64
	Optional  float64
}

// Options tune compression independently of the per-capture Config.
type Options struct {
	HeaderLines      int // leading lines always emitted
	SummaryThreshold int // raw size above which a page summary is appended
	Weights          TierWeights
}

// DefaultOptions reproduces the stock 60/85/95 ceilings.
func DefaultOptions() Options {
	return Options{
		HeaderLines:      5,
		SummaryThreshold: 20000,
		Weights:          TierWeights{Critical: 0.60, Important: 0.85, Optional: 0.95},
	}
}

// OptionsFromConfig maps the config file section onto Options.
func OptionsFromConfig(c config.SnapshotConfig) Options {
	return Options{
		HeaderLines:      c.HeaderLines,
		SummaryThreshold: c.SummaryThreshold,
		Weights: TierWeights{
			Critical:  c.TierWeights.Critical,
			Important: c.TierWeights.Important,
			Optional:  c.TierWeights.Optional,
		},
	}
}

// Compression is the outcome of Compress.
type Compression struct {
	Lines      []string
	Report     string
	Original   int // characters in the raw snapshot
	Compressed int // characters in the joined output
	Stats      Stats
}

// Text joins the emitted lines.
func (c *Compression) Text() string {
	return strings.Join(c.Lines, "\n")
}

// Ratio is the compressed size as a rounded percentage of the original.
// An empty original reports 100.
func (c *Compression) Ratio() int {
	if c.Original == 0 {
		return 100
	}
	return int(math.Round(float64(c.Compressed) / float64(c.Original) * 100))
}

// Compress greedily fills the budget tier by tier. The header lines come
// first and count as their joined length. Critical and important lines that
// do not fit are skipped and later, shorter lines still get a chance;
// optional lines stop at the first one that does not fit.
func Compress(raw string, cls *Classified, cfg Config, opts Options) *Compression {
	lines := strings.Split(raw, "\n")
	header := lines[:min(max(opts.HeaderLines, 0), len(lines))]

	out := make([]string, 0, len(header)+cls.Total())
	out = append(out, header...)
	current := charLen(strings.Join(header, "\n"))

	budget := float64(cfg.MaxTokens)
	fits := func(line string, weight float64) bool {
		return float64(current+charLen(line)) < budget*weight
	}

	for _, line := range cls.Critical {
		if fits(line, opts.Weights.Critical) {
			out = append(out, line)
			current += charLen(line)
		}
	}
	for _, line := range cls.Important {
		if fits(line, opts.Weights.Important) {
			out = append(out, line)
			current += charLen(line)
		}
	}
	if cfg.IncludeContent {
		for _, line := range cls.Optional {
			if !fits(line, opts.Weights.Optional) {
				break
			}
			out = append(out, line)
			current += charLen(line)
		}
	}

	c := &Compression{
		Lines:    out,
		Original: charLen(raw),
		Stats:    cls.Stats,
	}
	c.Compressed = charLen(c.Text())
	c.Report = fmt.Sprintf("\nMode: %s | Elements: %dB %dL %dI %dH\nOriginal: %d chars | Compressed: %d chars | Ratio: %d%%",
		cfg.Mode, c.Stats.Buttons, c.Stats.Links, c.Stats.Inputs, c.Stats.Headings,
		c.Original, c.Compressed, c.Ratio())
	return c
}

func charLen(s string) int {
	return utf8.RuneCountInString(s)
}
