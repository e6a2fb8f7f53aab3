package trailers

// Iterator walks the trailers of one message. Use like:
//
//	it := trailers.NewIterator(nil, msg)
//	defer it.Release()
//	for it.Next() {
//	  fmt.Println(it.Key(), it.Value())
//	}
//
// The message is parsed once by NewIterator. Raw, Key and Value describe
// the current trailer and are only valid until the next call to Next or
// Release; copy them if they are needed longer. An Iterator is not safe
// for concurrent use and cannot be restarted.
type Iterator struct {
	records []Record
	cur     int

	raw   string
	key   string
	value string
}

// NewIterator parses msg and returns an iterator positioned before the
// first trailer.
//
// The "---" divider cutoff does not apply here: a "---" line is treated as
// ordinary text, so trailers after it are found. This matches git's commit
// trailer walk, which expects a commit message and not a patch. Use Parse
// to honor the divider.
func NewIterator(s *Settings, msg string) *Iterator {
	b := Parse(s, msg, &Options{KeepPatch: true})

	return &Iterator{records: b.Records}
}

// Next advances to the next trailer, skipping non-trailer lines. It
// returns false once all trailers have been visited or after Release.
func (it *Iterator) Next() bool {
	it.raw, it.key, it.value = "", "", ""
	for it.cur < len(it.records) {
		r := it.records[it.cur]
		it.cur++
		if !r.IsTrailer {
			continue
		}
		it.raw, it.key, it.value = r.Raw, r.Key, r.Value

		return true
	}

	return false
}

// Raw returns the current trailer line(s) as found in the message.
func (it *Iterator) Raw() string { return it.raw }

// Key returns the key of the current trailer.
func (it *Iterator) Key() string { return it.key }

// Value returns the value of the current trailer.
func (it *Iterator) Value() string { return it.value }

// Release frees the parse result. It is safe to call more than once.
func (it *Iterator) Release() {
	it.records = nil
	it.cur = 0
	it.raw, it.key, it.value = "", "", ""
}
