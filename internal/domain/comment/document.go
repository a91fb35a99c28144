package comment

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/ericfisherdev/deploylinks/internal/domain/model"
)

// linkLinePattern matches a per-platform link line such as
// "- linux: https://example.org/build.zip".
var linkLinePattern = regexp.MustCompile(`^- (windows|linux|osx): (.+)$`)

var newlineStripper = strings.NewReplacer("\r", "", "\n", "")

type regionKind int

const (
	regionText regionKind = iota
	regionLink
	regionStats
)

// region is one independently editable span of a comment body.
type region struct {
	kind     regionKind
	text     string // Verbatim content of text and stats regions.
	platform model.Platform
	link     string
	eol      string // Line terminator that followed a link line.
}

// Document is a deployment comment body split into regions: free text, one
// link line per platform, and an optional translation statistics block.
// Parse followed by String reproduces the original body byte for byte; edits
// only touch the region they target.
type Document struct {
	regions []region
}

// Parse splits body into regions.
//
// The statistics block starts at the "## Translation stats" heading and runs
// up to the next Markdown heading or the end of the body. A link line is the
// first line starting with "- <platform>: " for each platform outside the
// statistics block; later lines for the same platform stay plain text.
func Parse(body string) *Document {
	doc := &Document{}
	statsStart, statsEnd, hasStats := statsSpan(body)
	seen := make(map[model.Platform]bool, len(model.Platforms))

	pos := 0
	for pos < len(body) {
		if hasStats && pos == statsStart {
			doc.regions = append(doc.regions, region{kind: regionStats, text: body[statsStart:statsEnd]})
			pos = statsEnd
			continue
		}

		lineEnd, next := len(body), len(body)
		eol := ""
		if i := strings.IndexByte(body[pos:], '\n'); i >= 0 {
			lineEnd = pos + i
			next = lineEnd + 1
			eol = "\n"
		}
		line := body[pos:lineEnd]
		if strings.HasSuffix(line, "\r") {
			line = line[:len(line)-1]
			eol = "\r" + eol
		}

		if m := linkLinePattern.FindStringSubmatch(line); m != nil && !seen[model.Platform(m[1])] {
			platform := model.Platform(m[1])
			seen[platform] = true
			doc.regions = append(doc.regions, region{kind: regionLink, platform: platform, link: m[2], eol: eol})
		} else {
			doc.appendText(body[pos:next])
		}
		pos = next
	}

	return doc
}

// appendText adds s to the trailing text region, starting a new one if needed.
func (d *Document) appendText(s string) {
	if n := len(d.regions); n > 0 && d.regions[n-1].kind == regionText {
		d.regions[n-1].text += s
		return
	}
	d.regions = append(d.regions, region{kind: regionText, text: s})
}

// SetLink replaces the link on the platform's link line. It reports false and
// leaves the document untouched when the body has no line for the platform or
// link is empty once line breaks are removed.
func (d *Document) SetLink(platform model.Platform, link string) bool {
	link = newlineStripper.Replace(link)
	if link == "" {
		return false
	}
	for i := range d.regions {
		if d.regions[i].kind == regionLink && d.regions[i].platform == platform {
			d.regions[i].link = link
			return true
		}
	}
	return false
}

// ReplaceTranslationStats swaps the statistics block for rendered, which must
// start with the statistics heading (see RenderTranslationTable). It reports
// false and changes nothing when the body has no statistics block.
func (d *Document) ReplaceTranslationStats(rendered string) bool {
	for i := range d.regions {
		if d.regions[i].kind == regionStats {
			d.regions[i].text = rendered
			return true
		}
	}
	return false
}

// HasTranslationStats reports whether the body carries a statistics block.
func (d *Document) HasTranslationStats() bool {
	for _, r := range d.regions {
		if r.kind == regionStats {
			return true
		}
	}
	return false
}

// Links returns the current value of every link line keyed by platform.
func (d *Document) Links() map[model.Platform]string {
	links := make(map[model.Platform]string, len(model.Platforms))
	for _, r := range d.regions {
		if r.kind == regionLink {
			links[r.platform] = r.link
		}
	}
	return links
}

// String serializes the document back to a comment body.
func (d *Document) String() string {
	var b strings.Builder
	for _, r := range d.regions {
		switch r.kind {
		case regionLink:
			b.WriteString("- ")
			b.WriteString(string(r.platform))
			b.WriteString(": ")
			b.WriteString(r.link)
			b.WriteString(r.eol)
		default:
			b.WriteString(r.text)
		}
	}
	return b.String()
}

// statsSpan returns the byte range of the translation statistics block. The
// range starts at the beginning of the heading line and ends at the beginning
// of the line holding the next heading at any depth, including headings
// nested in block quotes or list items, or at the end of body.
func statsSpan(body string) (int, int, bool) {
	src := []byte(body)
	root := goldmark.DefaultParser().Parse(text.NewReader(src))
	title := strings.TrimPrefix(TranslationStatsHeading, "## ")

	start, end := -1, len(body)
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		heading, ok := n.(*ast.Heading)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		if start < 0 {
			if heading.Parent() == root && heading.Level == 2 && heading.Lines().Len() > 0 &&
				strings.TrimSpace(string(heading.Text(src))) == title {
				start = lineStart(src, heading.Lines().At(0).Start)
			}
			return ast.WalkSkipChildren, nil
		}
		if pos := headingLineStart(src, heading, start+1); pos > start {
			end = pos
			return ast.WalkStop, nil
		}
		return ast.WalkSkipChildren, nil
	})

	if start < 0 {
		return 0, 0, false
	}
	return start, end, true
}

// emptyHeadingLine matches a line holding an ATX heading without text, after
// optional block quote and list item markers.
var emptyHeadingLine = regexp.MustCompile(`^(?:[ \t]*(?:>|[-*+]|\d{1,9}[.)])[ \t]*)*#{1,6}(?:[ \t]+#+)?[ \t]*$`)

// headingLineStart returns the offset of the line holding heading, or -1.
// Headings without text carry no line segments, so their line is found by
// scanning forward from the end of the preceding block, but not before from.
func headingLineStart(src []byte, heading *ast.Heading, from int) int {
	if heading.Lines().Len() > 0 {
		return lineStart(src, heading.Lines().At(0).Start)
	}

	pos := max(precedingBlockEnd(heading), from)
	if pos > 0 && src[pos-1] != '\n' {
		i := bytes.IndexByte(src[pos:], '\n')
		if i < 0 {
			return -1
		}
		pos += i + 1
	}
	for pos < len(src) {
		next := len(src)
		if i := bytes.IndexByte(src[pos:], '\n'); i >= 0 {
			next = pos + i + 1
		}
		if emptyHeadingLine.Match(bytes.TrimRight(src[pos:next], "\r\n")) {
			return pos
		}
		pos = next
	}
	return -1
}

// precedingBlockEnd returns the end offset of the last line of the block
// before n, climbing to ancestors when n is a first child. It returns 0 when
// nothing precedes n.
func precedingBlockEnd(n ast.Node) int {
	for ; n != nil; n = n.Parent() {
		if prev := n.PreviousSibling(); prev != nil {
			if end := lastLineStop(prev); end >= 0 {
				return end
			}
		}
	}
	return 0
}

// lastLineStop returns the largest line segment stop within n, or -1.
func lastLineStop(n ast.Node) int {
	stop := -1
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || c.Type() != ast.TypeBlock {
			return ast.WalkContinue, nil
		}
		if lines := c.Lines(); lines.Len() > 0 {
			stop = max(stop, lines.At(lines.Len()-1).Stop)
		}
		return ast.WalkContinue, nil
	})
	if stop < 0 {
		if prev := n.PreviousSibling(); prev != nil {
			return lastLineStop(prev)
		}
	}
	return stop
}

// lineStart returns the offset of the beginning of the line containing pos.
func lineStart(src []byte, pos int) int {
	return bytes.LastIndexByte(src[:pos], '\n') + 1
}
