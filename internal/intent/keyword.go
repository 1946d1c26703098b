package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var (
	itemIDPattern = regexp.MustCompile(`(?i)\bID(?:\s*:\s*|-)(\d+)`)
	titlePattern  = regexp.MustCompile(`(?i)update title:[ \t]*([^\r\n]*)`)
)

// KeywordClassifier is a keyword and pattern heuristic. Keyword checks run in the
// fixed order delete/remove, update, create; the first match wins. Identifier and
// title extraction take the first match in the message.
type KeywordClassifier struct {
	parser *when.Parser
	now    func() time.Time
}

// NewKeywordClassifier creates a classifier that resolves relative dates against now.
// A nil now uses time.Now.
func NewKeywordClassifier(now func() time.Time) *KeywordClassifier {
	if now == nil {
		now = time.Now
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &KeywordClassifier{parser: w, now: now}
}

var _ Classifier = (*KeywordClassifier)(nil)

// Classify implements Classifier.
func (k *KeywordClassifier) Classify(message string) Intent {
	lower := strings.ToLower(message)
	mentionsItem := strings.Contains(lower, "remind") || strings.Contains(lower, "appointment")

	itemID := ExtractItemID(message)
	if !mentionsItem && itemID == nil {
		return Intent{Kind: KindQuestion}
	}

	switch {
	case strings.Contains(lower, "delete") || strings.Contains(lower, "remove"):
		return Intent{Kind: KindDelete, ItemID: itemID}
	case strings.Contains(lower, "update"):
		return Intent{Kind: KindUpdate, ItemID: itemID, NewTitle: ExtractNewTitle(message)}
	case !mentionsItem:
		// An explicit ID with no verb is a question about that item.
		return Intent{Kind: KindQuestion}
	}

	return Intent{
		Kind:       KindCreate,
		Title:      strings.TrimSpace(message),
		StartTime:  k.parseTime(message),
		IsReminder: strings.Contains(lower, "remind"),
	}
}

// parseTime returns the first date phrase in message. Times before now are
// dropped; month names inside ordinary words ("may") otherwise resolve to the past.
func (k *KeywordClassifier) parseTime(message string) *time.Time {
	now := k.now()
	r, err := k.parser.Parse(message, now)
	if err != nil || r == nil || r.Time.Before(now) {
		return nil
	}
	t := r.Time.UTC()
	return &t
}

// ExtractItemID returns the first identifier written as "ID: <n>" or "ID-<n>".
func ExtractItemID(message string) *int64 {
	m := itemIDPattern.FindStringSubmatch(message)
	if m == nil {
		return nil
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

// ExtractNewTitle returns the text after "update title:" up to the end of the line,
// without a trailing item reference.
func ExtractNewTitle(message string) string {
	m := titlePattern.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	title := m[1]
	if loc := itemIDPattern.FindStringIndex(title); loc != nil {
		title = title[:loc[0]]
	}
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(title), ",;"))
}
