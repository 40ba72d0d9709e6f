package reconcile

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/meeplemtl/invoice-scanner/internal/common"
	"github.com/meeplemtl/invoice-scanner/internal/entity"
)

// Queue appends unmatched items to a tab-separated file for later
// processing. The file accumulates across runs; within one run each
// identifier is written at most once.
type Queue struct {
	path   string
	seen   map[string]bool
	logger *slog.Logger
}

func NewQueue(path string, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{path: path, seen: make(map[string]bool), logger: logger}
}

// Append records one unmatched item as "identifier<TAB>name".
func (q *Queue) Append(item entity.LineItem) error {
	id := item.Identifier()
	if id == "" {
		return common.NewAppError("QUEUE_NO_ID", "item has no identifier to queue", common.ErrInvalidInput)
	}
	if q.seen[id] {
		return nil
	}
	f, err := os.OpenFile(q.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return common.WrapError(err, "open unmatched queue")
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s\t%s\n", id, item.Name); err != nil {
		return common.WrapError(err, "append to unmatched queue")
	}
	q.seen[id] = true
	q.logger.Info("queued unmatched item", "identifier", id, "name", item.Name)
	return nil
}

// QueuedItem is one row read back from the unmatched queue.
type QueuedItem struct {
	Identifier string
	Name       string
}

// ReadQueue loads the queue file. Blank lines are ignored; rows without a
// tab are treated as identifier-only.
func ReadQueue(path string) ([]QueuedItem, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.NewAppError("QUEUE_MISSING", fmt.Sprintf("no queue file at %s", path), common.ErrNotFound)
		}
		return nil, common.WrapError(err, "open unmatched queue")
	}
	defer f.Close()

	var items []QueuedItem
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		id, name, _ := strings.Cut(line, "\t")
		items = append(items, QueuedItem{Identifier: id, Name: name})
	}
	if err := sc.Err(); err != nil {
		return nil, common.WrapError(err, "read unmatched queue")
	}
	return items, nil
}

// IsSKU distinguishes a vendor SKU from a UPC. UPCs are all-digit codes of
// at least 12 characters; anything shorter or with a non-digit is a SKU.
func IsSKU(identifier string) bool {
	if len(identifier) < 12 {
		return true
	}
	for _, r := range identifier {
		if r < '0' || r > '9' {
			return true
		}
	}
	return false
}
