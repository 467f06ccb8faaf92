package section

import "strings"

// Align partitions newText and oldText into corresponding segments
// anchored on the top-level headings both documents share.
//
// Headings are matched by normalized text. Walking the new document in
// order, every new heading that also appears in the old document opens a
// segment that runs up to the next such heading. New-only headings are
// folded into the segment that precedes them, and old-only headings are
// covered by whatever old span contains them. Text before the first shared
// heading is emitted as "Initial content" and text after the last one as a
// trailing segment, so the segments of each side concatenate back to the
// full text.
//
// When no heading is shared the result is the single "Entire document"
// pair. A heading that cannot be found in its text at or after the current
// position yields a *MissingHeadingError and no segments.
func Align(newHeadings, oldHeadings Sequence, newText, oldText string) ([]SegmentPair, error) {
	nh := newHeadings.Matchable()
	oh := oldHeadings.Matchable()
	oldIdx := indexOf(oh)

	shared := func(h Heading) bool {
		_, ok := oldIdx[h.Normalized]
		return ok
	}
	oldFor := func(h Heading) Heading { return oh[oldIdx[h.Normalized]] }

	anchor := -1
	for i, h := range nh {
		if shared(h) {
			anchor = i
			break
		}
	}
	if anchor < 0 {
		return WholeDocument(newText, oldText), nil
	}

	newCur := &cursor{side: SideNew, text: newText}
	oldCur := &cursor{side: SideOld, text: oldText}

	first := nh[anchor]
	newEnd, err := newCur.find(first.Text, 0)
	if err != nil {
		return nil, err
	}
	oldEnd, err := oldCur.find(oldFor(first).Text, 0)
	if err != nil {
		return nil, err
	}

	pairs := []SegmentPair{{
		Label:            LabelInitial,
		NewText:          newText[:newEnd],
		OldText:          oldText[:oldEnd],
		NextLabel:        first.Normalized,
		NewSpan:          Span{0, newEnd},
		OldSpan:          Span{0, oldEnd},
		InsertedHeadings: normalizedOf(nh[:anchor]),
	}}

	cur := anchor
	for {
		next := cur + 1
		for next < len(nh) && !shared(nh[next]) {
			next++
		}
		if next >= len(nh) {
			break
		}

		newSpan, err := newCur.between(nh[cur].Text, nh[next].Text, newEnd)
		if err != nil {
			return nil, err
		}
		oldSpan, err := oldCur.between(oldFor(nh[cur]).Text, oldFor(nh[next]).Text, oldEnd)
		if err != nil {
			return nil, err
		}

		pairs = append(pairs, SegmentPair{
			Label:            nh[cur].Normalized,
			NewText:          newText[newSpan.Start:newSpan.End],
			OldText:          oldText[oldSpan.Start:oldSpan.End],
			NextLabel:        nh[next].Normalized,
			NewSpan:          newSpan,
			OldSpan:          oldSpan,
			InsertedHeadings: normalizedOf(nh[cur+1 : next]),
		})
		newEnd, oldEnd = newSpan.End, oldSpan.End
		cur = next
	}

	newStart, err := newCur.find(nh[cur].Text, newEnd)
	if err != nil {
		return nil, err
	}
	oldStart, err := oldCur.find(oldFor(nh[cur]).Text, oldEnd)
	if err != nil {
		return nil, err
	}
	pairs = append(pairs, SegmentPair{
		Label:            nh[cur].Normalized,
		NewText:          newText[newStart:],
		OldText:          oldText[oldStart:],
		NextLabel:        NextLastSection,
		NewSpan:          Span{newStart, len(newText)},
		OldSpan:          Span{oldStart, len(oldText)},
		InsertedHeadings: normalizedOf(nh[cur+1:]),
	})

	annotateOldOnly(pairs, oh, newHeadings, oldText)
	return pairs, nil
}

// cursor performs forward substring searches over one document text.
type cursor struct {
	side Side
	text string
}

func (c *cursor) find(heading string, from int) (int, error) {
	if from > len(c.text) {
		from = len(c.text)
	}
	i := strings.Index(c.text[from:], heading)
	if i < 0 {
		return 0, &MissingHeadingError{Side: c.side, Heading: heading, From: from}
	}
	return from + i, nil
}

// between locates cur at or after from, then next strictly after cur.
func (c *cursor) between(cur, next string, from int) (Span, error) {
	start, err := c.find(cur, from)
	if err != nil {
		return Span{}, err
	}
	end, err := c.find(next, start+1)
	if err != nil {
		return Span{}, err
	}
	return Span{start, end}, nil
}

// annotateOldOnly records, per segment, the old headings that have no
// counterpart in the new document. Positions come from a forward scan of
// the old text; headings that cannot be placed are skipped.
func annotateOldOnly(pairs []SegmentPair, oh Sequence, newHeadings Sequence, oldText string) {
	inNew := make(map[string]bool, len(newHeadings))
	for _, h := range newHeadings {
		inNew[h.Normalized] = true
	}

	pos := 0
	for _, h := range oh {
		i := strings.Index(oldText[pos:], h.Text)
		if i < 0 {
			continue
		}
		at := pos + i
		pos = at + 1
		if inNew[h.Normalized] {
			continue
		}
		for p := range pairs {
			if at >= pairs[p].OldSpan.Start && at < pairs[p].OldSpan.End {
				pairs[p].AbsorbedOldHeadings = append(pairs[p].AbsorbedOldHeadings, h.Normalized)
				break
			}
		}
	}
}

func normalizedOf(hs Sequence) []string {
	if len(hs) == 0 {
		return nil
	}
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.Normalized
	}
	return out
}
