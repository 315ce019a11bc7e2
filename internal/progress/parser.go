package progress

import (
	"math"
	"regexp"
	"strconv"
	"time"
)

// MaxRunning is the highest percentage the parser reports.
const MaxRunning = 99

var (
	durationPattern = regexp.MustCompile(`Duration:\s*(\d+):(\d{2}):(\d{2})(?:\.(\d+))?`)
	positionPattern = regexp.MustCompile(`time=\s*(\d+):(\d{2}):(\d{2})(?:\.(\d+))?`)
)

// Parser tracks one job's position against the announced duration. It is not
// safe for concurrent use.
type Parser struct {
	duration time.Duration
	position time.Duration
	percent  int
}

// NewParser returns an empty parser.
func NewParser() *Parser {
	return &Parser{}
}

// Feed consumes one diagnostic line and returns the current percentage along
// with whether it increased. Only the first duration banner counts, since
// later ones describe additional inputs such as a lavfi filler source.
func (p *Parser) Feed(line string) (int, bool) {
	if p.duration == 0 {
		if d, ok := match(durationPattern, line); ok && d > 0 {
			p.duration = d
			return p.advance()
		}
	}
	if pos, ok := match(positionPattern, line); ok {
		p.position = pos
		return p.advance()
	}
	return p.percent, false
}

// Percentage returns the highest percentage reported so far.
func (p *Parser) Percentage() int {
	return p.percent
}

// Duration returns the announced total duration, or 0 if none was seen.
func (p *Parser) Duration() time.Duration {
	return p.duration
}

// Position returns the last reported position.
func (p *Parser) Position() time.Duration {
	return p.position
}

func (p *Parser) advance() (int, bool) {
	if p.duration <= 0 {
		return p.percent, false
	}
	pct := int(math.Floor(float64(p.position) / float64(p.duration) * 100))
	pct = min(max(pct, 0), MaxRunning)
	if pct <= p.percent {
		return p.percent, false
	}
	p.percent = pct
	return pct, true
}

func match(pattern *regexp.Regexp, line string) (time.Duration, bool) {
	m := pattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	hours, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	if minutes > 59 || seconds > 59 {
		return 0, false
	}
	total := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
	if frac := m[4]; frac != "" {
		value, err := strconv.ParseFloat("0."+frac, 64)
		if err == nil {
			total += time.Duration(value * float64(time.Second))
		}
	}
	return total, true
}
