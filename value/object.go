package value

import "github.com/jacoelho/ucl/internal/omap"

// Object is the ordered key->value mapping backing a KindObject Value.
// Duplicate keys do not create multiple map entries; instead the new
// value is appended to the implicit-array chain hanging off the existing
// entry's Value.next.
type Object struct {
	m               *omap.Map[*Value]
	tails           map[string]*Value
	caseInsensitive bool
}

func newObject(caseInsensitive bool) *Object {
	return &Object{
		m:               omap.New[*Value](caseInsensitive),
		tails:           make(map[string]*Value),
		caseInsensitive: caseInsensitive,
	}
}

// CaseInsensitive reports whether this object folds keys before hashing.
func (o *Object) CaseInsensitive() bool { return o.caseInsensitive }

// Count returns the number of distinct keys (implicit-array siblings do
// not inflate it).
func (o *Object) Count() int { return o.m.Count() }

// Keys returns the distinct keys in insertion order.
func (o *Object) Keys() []string { return o.m.Keys() }

// Get returns the head value for key (the first value inserted under that
// key), or nil if key is absent.
func (o *Object) Get(key string) *Value {
	v, ok := o.m.Lookup(key)
	if !ok {
		return nil
	}
	return v
}

// Put inserts child under key. If key already exists, child is appended to
// the existing entry's implicit-array chain instead of replacing it.
// Put takes ownership of child's reference.
func (o *Object) Put(key string, child *Value) {
	child.setKey(key)
	existing, inserted := o.m.Insert(key, child)
	if inserted {
		o.tails[o.m.NormalizeKey(key)] = child
		return
	}
	_ = existing
	nk := o.m.NormalizeKey(key)
	tail := o.tails[nk]
	if tail == nil {
		tail = o.Get(key)
	}
	tail.next = child
	o.tails[nk] = child
}

// Replace unconditionally sets key -> child, discarding any implicit-array
// chain that previously hung off it and unref'ing the values it replaces.
// Unlike Put, this never folds into a sibling chain.
func (o *Object) Replace(key string, child *Value) {
	child.setKey(key)
	if old, ok := o.m.Lookup(key); ok {
		for v := old; v != nil; {
			next := v.next
			v.next = nil
			Unref(v)
			v = next
		}
	}
	o.m.Replace(key, child)
	o.tails[o.m.NormalizeKey(key)] = child
}

// Delete removes key (and its whole implicit-array chain) from the object,
// returning the head value without unref'ing it — the caller takes
// ownership of the returned value.
func (o *Object) Delete(key string) *Value {
	v, ok := o.m.Delete(key)
	if !ok {
		return nil
	}
	delete(o.tails, o.m.NormalizeKey(key))
	return v
}

// Range visits each distinct key once, passing the head of its
// implicit-array chain (collapsed iteration mode).
func (o *Object) Range(fn func(key string, head *Value) bool) {
	o.m.Range(fn)
}

// RangeExpanded visits every value in every key's implicit-array chain, in
// insertion order within each chain (expanded iteration mode). This is the
// mode the emitter uses.
func (o *Object) RangeExpanded(fn func(key string, v *Value) bool) {
	o.m.Range(func(key string, head *Value) bool {
		for v := head; v != nil; v = v.next {
			if !fn(key, v) {
				return false
			}
		}
		return true
	})
}

// ExpandedCount returns the total number of values across every key's
// implicit-array chain, i.e. the count expanded iteration would visit.
func (o *Object) ExpandedCount() int {
	n := 0
	o.RangeExpanded(func(string, *Value) bool { n++; return true })
	return n
}

// Siblings returns the full implicit-array chain for key as a slice, head
// first.
func (o *Object) Siblings(key string) []*Value {
	head := o.Get(key)
	if head == nil {
		return nil
	}
	out := make([]*Value, 0, 1)
	for v := head; v != nil; v = v.next {
		out = append(out, v)
	}
	return out
}

func (o *Object) releaseAll() {
	o.m.Range(func(_ string, head *Value) bool {
		for v := head; v != nil; {
			next := v.next
			Unref(v)
			v = next
		}
		return true
	})
}

// MergeMode selects how MergeFrom resolves a same-key collision whose
// values are not both objects, supplementing libucl's
// UCL_DUPLICATE_APPEND / MERGE / REWRITE modes (ucl_internal.h).
type MergeMode int

const (
	// MergePriority keeps the existing value unless the incoming value's
	// priority is strictly higher. This is the default merge behavior.
	MergePriority MergeMode = iota
	// MergeAppend always folds the incoming value into the implicit-array
	// chain, ignoring priority.
	MergeAppend
	// MergeRewrite always replaces the existing value, ignoring priority.
	MergeRewrite
)

// MergeFrom merges other's entries into o under mode, used when an
// .include directive brings keys into a parent object. Object-vs-object
// collisions recurse.
func (o *Object) MergeFrom(other *Object, mode MergeMode) {
	other.Range(func(key string, incoming *Value) bool {
		existing := o.Get(key)
		siblings := other.Siblings(key)
		if existing == nil {
			for _, v := range siblings {
				o.Put(key, cloneShallowRef(v))
			}
			return true
		}

		if existing.kind == KindObject && incoming.kind == KindObject {
			existing.obj.MergeFrom(incoming.obj, mode)
			for _, v := range siblings[1:] {
				o.Put(key, cloneShallowRef(v))
			}
			return true
		}

		switch mode {
		case MergeAppend:
			for _, v := range siblings {
				o.Put(key, cloneShallowRef(v))
			}
		case MergeRewrite:
			o.Replace(key, cloneShallowRef(siblings[0]))
			for _, v := range siblings[1:] {
				o.Put(key, cloneShallowRef(v))
			}
		default: // MergePriority
			if incoming.priority > existing.priority {
				o.Replace(key, cloneShallowRef(siblings[0]))
				for _, v := range siblings[1:] {
					o.Put(key, cloneShallowRef(v))
				}
			}
			// equal or lower priority: existing wins, incoming dropped.
		}
		return true
	})
}

// cloneShallowRef takes a new reference on v itself and returns v;
// values crossing from one object into another during a merge are not
// deep-copied, matching libucl's reference-counted borrow semantics.
func cloneShallowRef(v *Value) *Value {
	return v.Ref()
}
