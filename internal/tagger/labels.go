package tagger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Label categories used by the tagger model's selected_tags.csv.
const (
	categoryGeneral   = 0
	categoryCharacter = 4
	categoryRating    = 9
)

// Emoticon tags whose underscores are meaningful and must survive
// normalization untouched.
var kaomojis = map[string]struct{}{
	"0_0": {}, "(o)_(o)": {}, "+_+": {}, "+_-": {}, "._.": {},
	"<o>_<o>": {}, "<|>_<|>": {}, "=_=": {}, ">_<": {}, "3_3": {},
	"6_9": {}, ">_o": {}, "@_@": {}, "^_^": {}, "o_o": {},
	"u_u": {}, "x_x": {}, "|_|": {}, "||_||": {},
}

// NormalizeTag rewrites whitespace to underscores so a tag has exactly one
// spelling everywhere it is persisted or compared. Applied once, when labels
// are loaded; nothing downstream re-normalizes.
func NormalizeTag(name string) string {
	if _, ok := kaomojis[name]; ok {
		return name
	}
	return strings.Join(strings.Fields(name), "_")
}

// labelIndex holds the model's output labels and which output positions
// belong to each category.
type labelIndex struct {
	names     []string
	general   []int
	character []int
	rating    []int
}

// parseLabels reads a selected_tags.csv (columns tag_id,name,category,count)
// and builds the label index. Tag names are normalized here and nowhere else.
func parseLabels(r io.Reader) (*labelIndex, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read label header: %w", err)
	}
	nameCol, categoryCol := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "name":
			nameCol = i
		case "category":
			categoryCol = i
		}
	}
	if nameCol < 0 || categoryCol < 0 {
		return nil, fmt.Errorf("label csv missing name/category columns: %v", header)
	}

	idx := &labelIndex{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read label row: %w", err)
		}
		category, err := strconv.Atoi(strings.TrimSpace(record[categoryCol]))
		if err != nil {
			return nil, fmt.Errorf("parse label category %q: %w", record[categoryCol], err)
		}
		pos := len(idx.names)
		idx.names = append(idx.names, NormalizeTag(record[nameCol]))
		switch category {
		case categoryGeneral:
			idx.general = append(idx.general, pos)
		case categoryCharacter:
			idx.character = append(idx.character, pos)
		case categoryRating:
			idx.rating = append(idx.rating, pos)
		}
	}
	if len(idx.names) == 0 {
		return nil, fmt.Errorf("label csv contains no labels")
	}
	return idx, nil
}
