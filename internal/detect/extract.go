package detect

// Extract runs m over text and returns one Candidate per match, in match
// order. Matches missing either capture are skipped.
func Extract(text string, m Matcher) []Candidate {
	matches := m.FindAll(text)
	if len(matches) == 0 {
		return nil
	}
	out := make([]Candidate, 0, len(matches))
	for _, match := range matches {
		name, ok := match.Group(GroupName)
		if !ok {
			continue
		}
		value, ok := match.Group(GroupValue)
		if !ok {
			continue
		}
		out = append(out, Candidate{
			Name:  text[name.Start:name.End],
			Value: text[value.Start:value.End],
			Start: value.Start,
			End:   value.End,
		})
	}
	return out
}
