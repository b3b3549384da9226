package trie

// Match is a word found by SearchFuzzy together with its edit distance from the query.
type Match struct {
	Word     string
	Distance int
}

// fuzzySearch holds the state of one SearchFuzzy call.
// The matrix is shared by the whole descent: row j belongs to the path prefix
// of j runes currently being explored, so siblings overwrite each other's rows.
type fuzzySearch struct {
	t      *Trie
	query  []rune
	k      int
	prefix bool

	cols    int
	rows    int
	mat     []int
	path    []byte
	matches []Match
}

// SearchFuzzy returns every stored word within Levenshtein distance k of query.
//
// With prefix set, a word matches when one of its prefixes is within distance k,
// and the reported distance is the smallest such one. Matches come back in
// lexicographic order. A negative k matches nothing.
func (t *Trie) SearchFuzzy(query string, k int, prefix bool) []Match {
	if k < 0 {
		return nil
	}

	q := []rune(query)
	n := len(q)
	// Row j >= n+k+1 never holds a value <= k, so deeper rows are pruned before they are needed.
	depth := t.maxRunes
	if k < depth-n-1 {
		depth = n + k + 1
	}
	rows := depth + 1

	s := &fuzzySearch{
		t:      t,
		query:  q,
		k:      k,
		prefix: prefix,
		cols:   n + 1,
		rows:   rows,
		mat:    make([]int, rows*(n+1)),
	}
	for i := 0; i <= n; i++ {
		s.mat[i] = i
	}

	if t.hasEmpty && n <= k {
		s.matches = append(s.matches, Match{Word: "", Distance: n})
	}
	s.descend(t.root, 0, n)
	return s.matches
}

func (s *fuzzySearch) descend(node, depth, best int) {
	lo, hi := s.t.edges(node)
	base := len(s.path)
	for edge := lo; edge < hi; edge++ {
		s.path = append(s.path[:base], s.t.label(edge)...)
		s.follow(edge, depth, best)
	}
	s.path = s.path[:base]
}

// follow extends the matrix by the label of edge, one row per rune,
// then scores the edge and continues into its child node.
func (s *fuzzySearch) follow(edge, depth, best int) {
	n := len(s.query)
	row := depth
	for _, r := range s.t.label(edge) {
		row++
		low := s.computeRow(row, r)
		if s.prefix {
			best = min(best, s.at(row, n))
		}
		if low > s.k {
			if s.prefix && best <= s.k {
				s.collect(edge, best)
			}
			return
		}
	}

	if s.t.terminal[edge] {
		dist := s.at(row, n)
		if s.prefix {
			dist = best
		}
		if dist <= s.k {
			s.emit(dist)
		}
	}

	if child := s.t.children[edge]; child != 0 {
		s.descend(child, row, best)
	}
}

// computeRow fills row j for path rune r and returns its minimum.
func (s *fuzzySearch) computeRow(j int, r rune) int {
	if j >= s.rows {
		panic("trie: fuzzy matrix row out of range")
	}
	prev := s.mat[(j-1)*s.cols : j*s.cols]
	cur := s.mat[j*s.cols : (j+1)*s.cols]

	cur[0] = j
	low := j
	for i := 1; i < s.cols; i++ {
		cost := 1
		if s.query[i-1] == r {
			cost = 0
		}
		cur[i] = min(prev[i-1]+cost, cur[i-1]+1, prev[i]+1)
		low = min(low, cur[i])
	}
	return low
}

func (s *fuzzySearch) at(row, col int) int {
	return s.mat[row*s.cols+col]
}

// collect emits every word at or below edge with the same distance.
// The path already holds the label of edge.
func (s *fuzzySearch) collect(edge, dist int) {
	if s.t.terminal[edge] {
		s.emit(dist)
	}
	child := s.t.children[edge]
	if child == 0 {
		return
	}

	lo, hi := s.t.edges(child)
	base := len(s.path)
	for e := lo; e < hi; e++ {
		s.path = append(s.path[:base], s.t.label(e)...)
		s.collect(e, dist)
	}
	s.path = s.path[:base]
}

func (s *fuzzySearch) emit(dist int) {
	s.matches = append(s.matches, Match{Word: string(s.path), Distance: dist})
}
