package store

import (
	"encoding/binary"
	"encoding/json"
	"iter"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/orneryd/graphrecords/pkg/qerr"
	"github.com/orneryd/graphrecords/pkg/value"
)

// Key prefixes for BadgerDB storage organization, adapted from the
// teacher's storage.BadgerEngine (spec §3.3, §6: a persistent Store/Mutable
// alternative to Memory for graphs that outgrow RAM).
const (
	badgerPrefixNode    = byte(0x01) // node:nodeIndex -> wireNode
	badgerPrefixEdge    = byte(0x02) // edge:edgeIndex -> wireEdge
	badgerPrefixGroupN  = byte(0x03) // groupN:group:0x00:nodeIndex -> empty
	badgerPrefixGroupE  = byte(0x04) // groupE:group:0x00:edgeIndex -> empty
	badgerPrefixOut     = byte(0x05) // out:nodeIndex:0x00:edgeIndex -> empty
	badgerPrefixIn      = byte(0x06) // in:nodeIndex:0x00:edgeIndex -> empty
)

// Badger is a persistent, disk-backed Store/Mutable implementation on top
// of BadgerDB, for graphs too large to keep fully in RAM (spec §3.3's
// storage contract is implementation-agnostic so the query core works
// unchanged against either engine).
type Badger struct {
	db *badger.DB

	mu        sync.Mutex
	nodeSeq   *badger.Sequence
	edgeSeq   *badger.Sequence
}

// BadgerOptions configures a Badger store, mirroring the teacher's
// BadgerOptions knob set.
type BadgerOptions struct {
	// DataDir is the directory for storing data files. Required unless
	// InMemory is set.
	DataDir string

	// InMemory runs BadgerDB in memory-only mode. Useful for tests that
	// want persistence semantics (transactions, WAL) without disk I/O.
	InMemory bool

	// SyncWrites forces fsync after each write: slower, more durable.
	SyncWrites bool

	// Logger receives BadgerDB's internal logging. A nil Logger silences it.
	Logger badger.Logger
}

// NewBadger opens (or creates) a persistent graph store at dataDir.
func NewBadger(dataDir string) (*Badger, error) {
	return NewBadgerWithOptions(BadgerOptions{DataDir: dataDir})
}

// NewBadgerInMemory opens an in-memory Badger store: transactional
// semantics without touching disk, useful in tests exercising the same
// code path as the persistent engine.
func NewBadgerInMemory() (*Badger, error) {
	return NewBadgerWithOptions(BadgerOptions{InMemory: true})
}

// NewBadgerWithOptions opens a Badger store with full control over its
// options, carrying forward the teacher's low-memory tuning defaults.
func NewBadgerWithOptions(opts BadgerOptions) (*Badger, error) {
	badgerOpts := badger.DefaultOptions(opts.DataDir)
	if opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	if opts.SyncWrites {
		badgerOpts = badgerOpts.WithSyncWrites(true)
	}
	badgerOpts = badgerOpts.WithLogger(opts.Logger)
	badgerOpts = badgerOpts.
		WithMemTableSize(16 << 20).
		WithValueLogFileSize(64 << 20).
		WithNumMemtables(2).
		WithNumLevelZeroTables(2).
		WithNumLevelZeroTablesStall(4).
		WithValueThreshold(1024).
		WithBlockCacheSize(32 << 20).
		WithIndexCacheSize(16 << 20)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, qerr.Wrap(err, "opening badger store")
	}

	nodeSeq, err := db.GetSequence([]byte("seq:node"), 100)
	if err != nil {
		db.Close()
		return nil, qerr.Wrap(err, "allocating node sequence")
	}
	edgeSeq, err := db.GetSequence([]byte("seq:edge"), 100)
	if err != nil {
		nodeSeq.Release()
		db.Close()
		return nil, qerr.Wrap(err, "allocating edge sequence")
	}

	return &Badger{db: db, nodeSeq: nodeSeq, edgeSeq: edgeSeq}, nil
}

// Close releases the sequences and the underlying database handle.
func (b *Badger) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.nodeSeq != nil {
		b.nodeSeq.Release()
	}
	if b.edgeSeq != nil {
		b.edgeSeq.Release()
	}
	return b.db.Close()
}

// Key encoding helpers.

func badgerNodeKey(ni NodeIndex) []byte {
	buf := make([]byte, 9)
	buf[0] = badgerPrefixNode
	binary.BigEndian.PutUint64(buf[1:], uint64(ni))
	return buf
}

func badgerEdgeKey(ei EdgeIndex) []byte {
	buf := make([]byte, 9)
	buf[0] = badgerPrefixEdge
	binary.BigEndian.PutUint64(buf[1:], uint64(ei))
	return buf
}

func badgerGroupNodeKey(g Group, ni NodeIndex) []byte {
	key := make([]byte, 0, 1+len(g)+1+8)
	key = append(key, badgerPrefixGroupN)
	key = append(key, []byte(g)...)
	key = append(key, 0x00)
	key = binary.BigEndian.AppendUint64(key, uint64(ni))
	return key
}

func badgerGroupNodePrefix(g Group) []byte {
	key := make([]byte, 0, 1+len(g)+1)
	key = append(key, badgerPrefixGroupN)
	key = append(key, []byte(g)...)
	key = append(key, 0x00)
	return key
}

func badgerGroupEdgeKey(g Group, ei EdgeIndex) []byte {
	key := make([]byte, 0, 1+len(g)+1+8)
	key = append(key, badgerPrefixGroupE)
	key = append(key, []byte(g)...)
	key = append(key, 0x00)
	key = binary.BigEndian.AppendUint64(key, uint64(ei))
	return key
}

func badgerGroupEdgePrefix(g Group) []byte {
	key := make([]byte, 0, 1+len(g)+1)
	key = append(key, badgerPrefixGroupE)
	key = append(key, []byte(g)...)
	key = append(key, 0x00)
	return key
}

func badgerOutKey(ni NodeIndex, ei EdgeIndex) []byte {
	key := make([]byte, 0, 18)
	key = append(key, badgerPrefixOut)
	key = binary.BigEndian.AppendUint64(key, uint64(ni))
	key = append(key, 0x00)
	key = binary.BigEndian.AppendUint64(key, uint64(ei))
	return key
}

func badgerOutPrefix(ni NodeIndex) []byte {
	key := make([]byte, 0, 10)
	key = append(key, badgerPrefixOut)
	key = binary.BigEndian.AppendUint64(key, uint64(ni))
	key = append(key, 0x00)
	return key
}

func badgerInKey(ni NodeIndex, ei EdgeIndex) []byte {
	key := make([]byte, 0, 18)
	key = append(key, badgerPrefixIn)
	key = binary.BigEndian.AppendUint64(key, uint64(ni))
	key = append(key, 0x00)
	key = binary.BigEndian.AppendUint64(key, uint64(ei))
	return key
}

func badgerInPrefix(ni NodeIndex) []byte {
	key := make([]byte, 0, 10)
	key = append(key, badgerPrefixIn)
	key = binary.BigEndian.AppendUint64(key, uint64(ni))
	key = append(key, 0x00)
	return key
}

func badgerExtractTrailingIndex(key []byte) uint64 {
	if len(key) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(key[len(key)-8:])
}

// Wire encoding: value.Value has no exported fields to marshal directly,
// and Attributes keys are themselves Values, which encoding/json cannot
// use as map keys — so each node/edge is flattened to a key/value pair
// list before JSON encoding (same shape as the teacher's
// serializableNode/serializableEdge, generalized for our attribute model).

type wireValue struct {
	Kind  int    `json:"k"`
	S     string `json:"s,omitempty"`
	I     int64  `json:"i,omitempty"`
	F     float64 `json:"f,omitempty"`
	B     bool   `json:"b,omitempty"`
	TUnix int64  `json:"t,omitempty"`
	DNano int64  `json:"d,omitempty"`
}

func toWireValue(v value.Value) wireValue {
	w := wireValue{Kind: int(v.Kind())}
	switch v.Kind() {
	case value.KindString:
		w.S = v.AsString()
	case value.KindInt:
		w.I = v.AsInt()
	case value.KindFloat:
		w.F = v.AsFloat()
	case value.KindBool:
		w.B = v.AsBool()
	case value.KindDateTime:
		w.TUnix = v.AsDateTime().UnixNano()
	case value.KindDuration:
		w.DNano = int64(v.AsDuration())
	}
	return w
}

func fromWireValue(w wireValue) value.Value {
	switch value.Kind(w.Kind) {
	case value.KindString:
		return value.String(w.S)
	case value.KindInt:
		return value.Int(w.I)
	case value.KindFloat:
		return value.Float(w.F)
	case value.KindBool:
		return value.Bool(w.B)
	case value.KindDateTime:
		return value.DateTime(time.Unix(0, w.TUnix))
	case value.KindDuration:
		return value.Duration(time.Duration(w.DNano))
	default:
		return value.Null()
	}
}

type wireAttr struct {
	K wireValue `json:"k"`
	V wireValue `json:"v"`
}

func toWireAttrs(attrs Attributes) []wireAttr {
	out := make([]wireAttr, 0, len(attrs))
	for k, v := range attrs {
		out = append(out, wireAttr{K: toWireValue(k), V: toWireValue(v)})
	}
	return out
}

func fromWireAttrs(wa []wireAttr) Attributes {
	out := make(Attributes, len(wa))
	for _, a := range wa {
		out[fromWireValue(a.K)] = fromWireValue(a.V)
	}
	return out
}

type wireNode struct {
	Attrs  []wireAttr `json:"attrs"`
	Groups []string   `json:"groups,omitempty"`
}

type wireEdge struct {
	Source uint64     `json:"source"`
	Target uint64     `json:"target"`
	Attrs  []wireAttr `json:"attrs"`
	Groups []string   `json:"groups,omitempty"`
}

func groupsToStrings(gs []Group) []string {
	out := make([]string, len(gs))
	for i, g := range gs {
		out[i] = string(g)
	}
	return out
}

func stringsToGroups(ss []string) []Group {
	out := make([]Group, len(ss))
	for i, s := range ss {
		out[i] = Group(s)
	}
	return out
}

// AddNode inserts a node with a freshly allocated NodeIndex.
func (b *Badger) AddNode(attrs Attributes, groups ...Group) (NodeIndex, error) {
	id, err := b.nodeSeq.Next()
	if err != nil {
		return 0, qerr.Wrap(err, "allocating node index")
	}
	ni := NodeIndex(id)

	wn := wireNode{Attrs: toWireAttrs(attrs), Groups: groupsToStrings(groups)}
	data, err := json.Marshal(wn)
	if err != nil {
		return 0, qerr.Wrap(err, "encoding node %d", ni)
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(badgerNodeKey(ni), data); err != nil {
			return err
		}
		for _, g := range groups {
			if err := txn.Set(badgerGroupNodeKey(g, ni), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, qerr.Wrap(err, "writing node %d", ni)
	}
	return ni, nil
}

// AddEdge inserts a directed edge between two existing nodes.
func (b *Badger) AddEdge(source, target NodeIndex, attrs Attributes, groups ...Group) (EdgeIndex, error) {
	err := b.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(badgerNodeKey(source)); err != nil {
			return qerr.Index("edge source node %d not found", source)
		}
		if _, err := txn.Get(badgerNodeKey(target)); err != nil {
			return qerr.Index("edge target node %d not found", target)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	id, err := b.edgeSeq.Next()
	if err != nil {
		return 0, qerr.Wrap(err, "allocating edge index")
	}
	ei := EdgeIndex(id)

	we := wireEdge{Source: uint64(source), Target: uint64(target), Attrs: toWireAttrs(attrs), Groups: groupsToStrings(groups)}
	data, err := json.Marshal(we)
	if err != nil {
		return 0, qerr.Wrap(err, "encoding edge %d", ei)
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(badgerEdgeKey(ei), data); err != nil {
			return err
		}
		if err := txn.Set(badgerOutKey(source, ei), nil); err != nil {
			return err
		}
		if err := txn.Set(badgerInKey(target, ei), nil); err != nil {
			return err
		}
		for _, g := range groups {
			if err := txn.Set(badgerGroupEdgeKey(g, ei), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, qerr.Wrap(err, "writing edge %d", ei)
	}
	return ei, nil
}

func (b *Badger) readNode(txn *badger.Txn, ni NodeIndex) (wireNode, error) {
	item, err := txn.Get(badgerNodeKey(ni))
	if err != nil {
		return wireNode{}, qerr.Index("node %d not found", ni)
	}
	var wn wireNode
	err = item.Value(func(data []byte) error { return json.Unmarshal(data, &wn) })
	if err != nil {
		return wireNode{}, qerr.Wrap(err, "decoding node %d", ni)
	}
	return wn, nil
}

func (b *Badger) readEdge(txn *badger.Txn, ei EdgeIndex) (wireEdge, error) {
	item, err := txn.Get(badgerEdgeKey(ei))
	if err != nil {
		return wireEdge{}, qerr.Index("edge %d not found", ei)
	}
	var we wireEdge
	err = item.Value(func(data []byte) error { return json.Unmarshal(data, &we) })
	if err != nil {
		return wireEdge{}, qerr.Wrap(err, "decoding edge %d", ei)
	}
	return we, nil
}

// RemoveNode deletes a node and every edge incident to it.
func (b *Badger) RemoveNode(ni NodeIndex) error {
	return b.db.Update(func(txn *badger.Txn) error {
		wn, err := b.readNode(txn, ni)
		if err != nil {
			return err
		}

		var incident []EdgeIndex
		for _, prefix := range [][]byte{badgerOutPrefix(ni), badgerInPrefix(ni)} {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				incident = append(incident, EdgeIndex(badgerExtractTrailingIndex(it.Item().KeyCopy(nil))))
			}
			it.Close()
		}
		for _, ei := range incident {
			if err := b.removeEdgeLocked(txn, ei); err != nil {
				return err
			}
		}

		for _, g := range stringsToGroups(wn.Groups) {
			if err := txn.Delete(badgerGroupNodeKey(g, ni)); err != nil {
				return err
			}
		}
		return txn.Delete(badgerNodeKey(ni))
	})
}

// RemoveEdge deletes a single edge.
func (b *Badger) RemoveEdge(ei EdgeIndex) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return b.removeEdgeLocked(txn, ei)
	})
}

func (b *Badger) removeEdgeLocked(txn *badger.Txn, ei EdgeIndex) error {
	we, err := b.readEdge(txn, ei)
	if err != nil {
		return err
	}
	if err := txn.Delete(badgerOutKey(NodeIndex(we.Source), ei)); err != nil {
		return err
	}
	if err := txn.Delete(badgerInKey(NodeIndex(we.Target), ei)); err != nil {
		return err
	}
	for _, g := range stringsToGroups(we.Groups) {
		if err := txn.Delete(badgerGroupEdgeKey(g, ei)); err != nil {
			return err
		}
	}
	return txn.Delete(badgerEdgeKey(ei))
}

// SetNodeAttribute sets (or overwrites) a single attribute on a node.
func (b *Badger) SetNodeAttribute(ni NodeIndex, key value.AttributeKey, v value.Value) error {
	return b.db.Update(func(txn *badger.Txn) error {
		wn, err := b.readNode(txn, ni)
		if err != nil {
			return err
		}
		attrs := fromWireAttrs(wn.Attrs)
		attrs[key] = v
		wn.Attrs = toWireAttrs(attrs)
		data, err := json.Marshal(wn)
		if err != nil {
			return qerr.Wrap(err, "encoding node %d", ni)
		}
		return txn.Set(badgerNodeKey(ni), data)
	})
}

// SetEdgeAttribute sets (or overwrites) a single attribute on an edge.
func (b *Badger) SetEdgeAttribute(ei EdgeIndex, key value.AttributeKey, v value.Value) error {
	return b.db.Update(func(txn *badger.Txn) error {
		we, err := b.readEdge(txn, ei)
		if err != nil {
			return err
		}
		attrs := fromWireAttrs(we.Attrs)
		attrs[key] = v
		we.Attrs = toWireAttrs(attrs)
		data, err := json.Marshal(we)
		if err != nil {
			return qerr.Wrap(err, "encoding edge %d", ei)
		}
		return txn.Set(badgerEdgeKey(ei), data)
	})
}

// NodeIndices streams every node index in ascending order (Badger's LSM
// keeps keys sorted, so a prefix scan is already ordered).
func (b *Badger) NodeIndices() iter.Seq[NodeIndex] {
	return func(yield func(NodeIndex) bool) {
		var indices []NodeIndex
		_ = b.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			it := txn.NewIterator(opts)
			defer it.Close()
			prefix := []byte{badgerPrefixNode}
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				indices = append(indices, NodeIndex(badgerExtractTrailingIndex(it.Item().KeyCopy(nil))))
			}
			return nil
		})
		for _, ni := range indices {
			if !yield(ni) {
				return
			}
		}
	}
}

// EdgeIndices streams every edge index in ascending order.
func (b *Badger) EdgeIndices() iter.Seq[EdgeIndex] {
	return func(yield func(EdgeIndex) bool) {
		var indices []EdgeIndex
		_ = b.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			it := txn.NewIterator(opts)
			defer it.Close()
			prefix := []byte{badgerPrefixEdge}
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				indices = append(indices, EdgeIndex(badgerExtractTrailingIndex(it.Item().KeyCopy(nil))))
			}
			return nil
		})
		for _, ei := range indices {
			if !yield(ei) {
				return
			}
		}
	}
}

// NodeAttributes returns a node's attribute map.
func (b *Badger) NodeAttributes(ni NodeIndex) (Attributes, error) {
	var attrs Attributes
	err := b.db.View(func(txn *badger.Txn) error {
		wn, err := b.readNode(txn, ni)
		if err != nil {
			return err
		}
		attrs = fromWireAttrs(wn.Attrs)
		return nil
	})
	return attrs, err
}

// EdgeAttributes returns an edge's attribute map.
func (b *Badger) EdgeAttributes(ei EdgeIndex) (Attributes, error) {
	var attrs Attributes
	err := b.db.View(func(txn *badger.Txn) error {
		we, err := b.readEdge(txn, ei)
		if err != nil {
			return err
		}
		attrs = fromWireAttrs(we.Attrs)
		return nil
	})
	return attrs, err
}

// EdgeEndpoints returns an edge's (source, target) node indices.
func (b *Badger) EdgeEndpoints(ei EdgeIndex) (NodeIndex, NodeIndex, error) {
	var src, dst NodeIndex
	err := b.db.View(func(txn *badger.Txn) error {
		we, err := b.readEdge(txn, ei)
		if err != nil {
			return err
		}
		src, dst = NodeIndex(we.Source), NodeIndex(we.Target)
		return nil
	})
	return src, dst, err
}

// GroupsOfNode streams the groups a node belongs to.
func (b *Badger) GroupsOfNode(ni NodeIndex) iter.Seq[Group] {
	return func(yield func(Group) bool) {
		var groups []Group
		_ = b.db.View(func(txn *badger.Txn) error {
			wn, err := b.readNode(txn, ni)
			if err != nil {
				return err
			}
			groups = stringsToGroups(wn.Groups)
			return nil
		})
		for _, g := range groups {
			if !yield(g) {
				return
			}
		}
	}
}

// GroupsOfEdge streams the groups an edge belongs to.
func (b *Badger) GroupsOfEdge(ei EdgeIndex) iter.Seq[Group] {
	return func(yield func(Group) bool) {
		var groups []Group
		_ = b.db.View(func(txn *badger.Txn) error {
			we, err := b.readEdge(txn, ei)
			if err != nil {
				return err
			}
			groups = stringsToGroups(we.Groups)
			return nil
		})
		for _, g := range groups {
			if !yield(g) {
				return
			}
		}
	}
}

// OutgoingEdges streams the edges whose source is ni.
func (b *Badger) OutgoingEdges(ni NodeIndex) iter.Seq[EdgeIndex] {
	return b.adjacency(badgerOutPrefix(ni))
}

// IncomingEdges streams the edges whose target is ni.
func (b *Badger) IncomingEdges(ni NodeIndex) iter.Seq[EdgeIndex] {
	return b.adjacency(badgerInPrefix(ni))
}

func (b *Badger) adjacency(prefix []byte) iter.Seq[EdgeIndex] {
	return func(yield func(EdgeIndex) bool) {
		var out []EdgeIndex
		_ = b.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			it := txn.NewIterator(opts)
			defer it.Close()
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				out = append(out, EdgeIndex(badgerExtractTrailingIndex(it.Item().KeyCopy(nil))))
			}
			return nil
		})
		for _, ei := range out {
			if !yield(ei) {
				return
			}
		}
	}
}

// NodesInGroup streams the nodes belonging to g, using the secondary group
// index (the Badger analogue of the teacher's label index).
func (b *Badger) NodesInGroup(g Group) iter.Seq[NodeIndex] {
	prefix := badgerGroupNodePrefix(g)
	return func(yield func(NodeIndex) bool) {
		var out []NodeIndex
		_ = b.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			it := txn.NewIterator(opts)
			defer it.Close()
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				out = append(out, NodeIndex(badgerExtractTrailingIndex(it.Item().KeyCopy(nil))))
			}
			return nil
		})
		for _, ni := range out {
			if !yield(ni) {
				return
			}
		}
	}
}

// EdgesInGroup streams the edges belonging to g.
func (b *Badger) EdgesInGroup(g Group) iter.Seq[EdgeIndex] {
	prefix := badgerGroupEdgePrefix(g)
	return func(yield func(EdgeIndex) bool) {
		var out []EdgeIndex
		_ = b.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			it := txn.NewIterator(opts)
			defer it.Close()
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				out = append(out, EdgeIndex(badgerExtractTrailingIndex(it.Item().KeyCopy(nil))))
			}
			return nil
		})
		for _, ei := range out {
			if !yield(ei) {
				return
			}
		}
	}
}

// NodeCount reports the current number of nodes.
func (b *Badger) NodeCount() int {
	return b.countPrefix([]byte{badgerPrefixNode})
}

// EdgeCount reports the current number of edges.
func (b *Badger) EdgeCount() int {
	return b.countPrefix([]byte{badgerPrefixEdge})
}

func (b *Badger) countPrefix(prefix []byte) int {
	n := 0
	_ = b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n
}

// Sync flushes BadgerDB's write-ahead log to disk.
func (b *Badger) Sync() error {
	return b.db.Sync()
}

// RunValueLogGC runs one round of BadgerDB's value-log garbage collection,
// reclaiming space from overwritten/deleted attribute blobs.
func (b *Badger) RunValueLogGC(discardRatio float64) error {
	err := b.db.RunValueLogGC(discardRatio)
	if err == badger.ErrNoRewrite {
		return nil
	}
	return err
}

var _ Mutable = (*Badger)(nil)
