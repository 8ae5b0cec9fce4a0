// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

// Package registry implements the transactional path registry.
//
// The registry tracks filesystem paths (entries) and their category
// memberships. Mutations never touch committed state directly: they are
// validated against a staged view and recorded in a transaction log.
// Commit replays the log against a snapshot of committed state,
// re-validating every operation, and swaps the result in atomically.
//
// # Ownership
//
// The registry exclusively owns all Entry and Category values. The
// category index (name → member paths) is derived state, rebuilt from
// committed entries after every commit, and is never consulted for
// existence checks.
//
// # Thread Safety
//
// All methods are safe for concurrent use. The intended usage is still
// a single logical writer; the lock exists so read accessors can be
// served while a commit is in flight.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pathindex/pathindex/services/index/pathutil"
	"github.com/pathindex/pathindex/services/index/txn"
)

// DefaultCategory is created on every fresh registry so registration
// without an explicit category always has a home.
const DefaultCategory = "default"

// Options configures registry behavior.
type Options struct {
	// Logger receives registry diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// Now supplies timestamps, overridable for tests.
	Now func() time.Time
}

// Option is a functional option for configuring the registry.
type Option func(*Options)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithNow sets the timestamp source. Used by tests for deterministic
// RegisteredAt values.
func WithNow(now func() time.Time) Option {
	return func(o *Options) {
		o.Now = now
	}
}

// DeleteOptions controls Delete behavior.
type DeleteOptions struct {
	// Recursive extends a path delete to all registered descendants of
	// a directory entry.
	Recursive bool

	// Unregister allows a category delete to unregister remaining
	// members instead of failing with ErrCategoryNotEmpty.
	Unregister bool
}

// Stats summarizes committed registry state.
type Stats struct {
	// Entries is the number of committed entries.
	Entries int

	// Categories is the number of committed categories.
	Categories int

	// ByKind maps entry kind to count.
	ByKind map[EntryKind]int

	// Pending is the number of staged, uncommitted operations.
	Pending int
}

// state is the mutable core: entries, categories, and the derived
// category index. Cloned wholesale for staging and commit replay.
type state struct {
	entries    map[string]*Entry
	categories map[string]*Category
	// members is the category index: name → set of member paths.
	// Derived from entries; rebuilt after commit.
	members map[string]map[string]struct{}
}

func newState() *state {
	return &state{
		entries:    make(map[string]*Entry),
		categories: make(map[string]*Category),
		members:    make(map[string]map[string]struct{}),
	}
}

func (s *state) clone() *state {
	cp := newState()
	for p, e := range s.entries {
		cp.entries[p] = e.clone()
	}
	for n, c := range s.categories {
		cp.categories[n] = c.clone()
	}
	for n, set := range s.members {
		ms := make(map[string]struct{}, len(set))
		for p := range set {
			ms[p] = struct{}{}
		}
		cp.members[n] = ms
	}
	return cp
}

// rebuildIndex recomputes the category index from entries. The index is
// never trusted across a commit boundary; every commit derives it from
// the committed entries again.
func (s *state) rebuildIndex() {
	s.members = make(map[string]map[string]struct{}, len(s.categories))
	for name := range s.categories {
		s.members[name] = make(map[string]struct{})
	}
	for path, e := range s.entries {
		for _, c := range e.Categories {
			s.members[c][path] = struct{}{}
		}
	}
}

// apply executes one staged operation against s, validating its
// preconditions. Used both for staging (fast fail) and commit replay.
func (s *state) apply(op txn.Op) error {
	switch op.Kind {
	case txn.OpRegister:
		return s.applyRegister(op)
	case txn.OpUnregister:
		return s.applyUnregister(op)
	case txn.OpRegisterCategory:
		return s.applyRegisterCategory(op)
	case txn.OpDeleteCategory:
		return s.applyDeleteCategory(op)
	case txn.OpDeletePath:
		return s.applyDeletePath(op)
	case txn.OpTag:
		return s.applyTag(op)
	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

func (s *state) applyRegister(op txn.Op) error {
	if _, exists := s.entries[op.Path]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePath, op.Path)
	}
	if _, exists := s.categories[op.Category]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, op.Category)
	}

	kind := KindFile
	if op.Directory {
		kind = KindDirectory
	}
	entry := &Entry{
		ID:           op.EntryID,
		Path:         op.Path,
		Kind:         kind,
		Categories:   []string{op.Category},
		Info:         op.Info,
		RegisteredAt: op.StagedAt,
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	s.entries[op.Path] = entry
	s.addMember(op.Category, op.Path)
	return nil
}

func (s *state) applyUnregister(op txn.Op) error {
	entry, exists := s.entries[op.Path]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownPath, op.Path)
	}
	if op.Recursive && entry.Kind == KindDirectory {
		for _, p := range s.descendants(op.Path) {
			s.removeEntry(p)
		}
	}
	s.removeEntry(op.Path)
	return nil
}

func (s *state) applyRegisterCategory(op txn.Op) error {
	if _, exists := s.categories[op.Category]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCategory, op.Category)
	}
	s.categories[op.Category] = &Category{Name: op.Category, Info: op.Info}
	s.members[op.Category] = make(map[string]struct{})
	return nil
}

func (s *state) applyDeleteCategory(op txn.Op) error {
	if _, exists := s.categories[op.Category]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, op.Category)
	}
	if len(s.members[op.Category]) > 0 {
		if !op.Unregister {
			return fmt.Errorf("%w: %s has %d members",
				ErrCategoryNotEmpty, op.Category, len(s.members[op.Category]))
		}
		for _, path := range setToSorted(s.members[op.Category]) {
			s.removeEntry(path)
		}
	}
	delete(s.categories, op.Category)
	delete(s.members, op.Category)
	return nil
}

func (s *state) applyDeletePath(op txn.Op) error {
	entry, exists := s.entries[op.Path]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownPath, op.Path)
	}
	if op.Recursive && entry.Kind == KindDirectory {
		for _, p := range s.descendants(op.Path) {
			s.removeEntry(p)
		}
	}
	s.removeEntry(op.Path)
	return nil
}

func (s *state) applyTag(op txn.Op) error {
	entry, exists := s.entries[op.Path]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownPath, op.Path)
	}
	if _, exists := s.categories[op.Category]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, op.Category)
	}
	entry.addCategory(op.Category)
	s.addMember(op.Category, op.Path)
	return nil
}

func (s *state) addMember(category, path string) {
	set, ok := s.members[category]
	if !ok {
		set = make(map[string]struct{})
		s.members[category] = set
	}
	set[path] = struct{}{}
}

// removeEntry drops the entry and all its index back-references.
func (s *state) removeEntry(path string) {
	entry, exists := s.entries[path]
	if !exists {
		return
	}
	for _, c := range entry.Categories {
		delete(s.members[c], path)
	}
	delete(s.entries, path)
}

// descendants returns the registered paths strictly under dir, sorted.
func (s *state) descendants(dir string) []string {
	var out []string
	for p := range s.entries {
		if pathutil.IsSubpath(p, dir) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func setToSorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Registry is the transactional path registry.
type Registry struct {
	mu sync.RWMutex

	root      string
	createdAt time.Time

	// committed is the durable state, only replaced by Commit.
	committed *state

	// staged is committed plus all staged operations, used to fail
	// invalid mutations at call time.
	staged *state

	log     *txn.Log
	options Options
}

// New creates an empty registry rooted at root.
//
// Description:
//
//	Creates a registry with the default category pre-registered, the
//	way a fresh index starts. The root is informational: it names the
//	directory the index covers and is preserved through serialization.
//
// Inputs:
//
//	root - Absolute path of the indexed directory.
//	opts - Functional options.
//
// Outputs:
//
//	*Registry - Ready-to-use empty registry.
func New(root string, opts ...Option) *Registry {
	options := Options{Now: time.Now}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	options.Logger = options.Logger.With("component", "registry")

	committed := newState()
	committed.categories[DefaultCategory] = &Category{
		Name: DefaultCategory,
		Info: "Default category",
	}
	committed.members[DefaultCategory] = make(map[string]struct{})

	return &Registry{
		root:      root,
		createdAt: options.Now(),
		committed: committed,
		staged:    committed.clone(),
		log:       txn.NewLog(),
		options:   options,
	}
}

// Root returns the indexed directory.
func (r *Registry) Root() string {
	return r.root
}

// CreatedAt returns when the index was first created.
func (r *Registry) CreatedAt() time.Time {
	return r.createdAt
}

// Register stages registration of a path under the given category.
//
// Description:
//
//	Validates against the staged view: the path must not already be
//	registered (committed or staged) and the category must exist.
//	Committed state is not touched until Commit.
//
// Inputs:
//
//	path - Absolute, cleaned path (see pathutil.Resolve).
//	category - Existing category name.
//	directory - True to create a directory entry.
//	info - Optional note.
//
// Outputs:
//
//	*Entry - Copy of the staged entry, with its assigned ID.
//	error - ErrDuplicatePath or ErrUnknownCategory.
func (r *Registry) Register(path, category string, directory bool, info string) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	op := txn.Op{
		Kind:      txn.OpRegister,
		EntryID:   uuid.New(),
		Path:      path,
		Directory: directory,
		Category:  category,
		Info:      info,
		StagedAt:  r.options.Now(),
	}
	if err := r.stageLocked(op); err != nil {
		return nil, err
	}
	return r.staged.entries[path].clone(), nil
}

// Unregister stages removal of a registered path.
//
// When recursive is true and the path is a directory entry, all
// registered descendants are removed with it.
func (r *Registry) Unregister(path string, recursive bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.stageLocked(txn.Op{
		Kind:      txn.OpUnregister,
		Path:      path,
		Recursive: recursive,
		StagedAt:  r.options.Now(),
	})
}

// RegisterCategory stages creation of a named category.
func (r *Registry) RegisterCategory(name, info string) (*Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	op := txn.Op{
		Kind:     txn.OpRegisterCategory,
		Category: name,
		Info:     info,
		StagedAt: r.options.Now(),
	}
	if err := r.stageLocked(op); err != nil {
		return nil, err
	}
	return r.staged.categories[name].clone(), nil
}

// Tag stages adding an existing entry to an additional category.
func (r *Registry) Tag(path, category string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.stageLocked(txn.Op{
		Kind:     txn.OpTag,
		Path:     path,
		Category: category,
		StagedAt: r.options.Now(),
	})
}

// DeleteCategory stages deletion of a category.
//
// A category with members fails with ErrCategoryNotEmpty unless
// opts.Unregister is set, in which case the members are unregistered
// from the registry entirely before the category is removed.
func (r *Registry) DeleteCategory(name string, opts DeleteOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.stageLocked(txn.Op{
		Kind:       txn.OpDeleteCategory,
		Category:   name,
		Unregister: opts.Unregister,
		Recursive:  opts.Recursive,
		StagedAt:   r.options.Now(),
	})
}

// DeletePath stages removal of a path entry. With opts.Recursive, all
// registered descendants of a directory entry go with it; siblings are
// untouched.
func (r *Registry) DeletePath(path string, opts DeleteOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.stageLocked(txn.Op{
		Kind:      txn.OpDeletePath,
		Path:      path,
		Recursive: opts.Recursive,
		StagedAt:  r.options.Now(),
	})
}

// stageLocked validates op against the staged view and, on success,
// appends it to the transaction log. Caller holds r.mu.
func (r *Registry) stageLocked(op txn.Op) error {
	if err := r.staged.apply(op); err != nil {
		return err
	}
	seq := r.log.Append(op)
	r.options.Logger.Debug("staged operation",
		"kind", string(op.Kind),
		"seq", seq,
		"path", op.Path,
		"category", op.Category)
	return nil
}

// Commit applies all staged operations atomically.
//
// Description:
//
//	Replays the transaction log in submission order against a clone of
//	committed state, re-validating every operation. Either every staged
//	operation applies and the new state is swapped in, or committed
//	state is left untouched and the first validation failure is
//	returned. The staged operations survive a failed commit so the
//	caller can inspect or Rollback.
//
//	The category index is rebuilt from the new committed state before
//	the swap.
//
// Inputs:
//
//	ctx - Checked for cancellation before the replay starts.
//
// Outputs:
//
//	error - First replay failure, or ctx.Err().
func (r *Registry) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ops := r.log.Ops()
	if len(ops) == 0 {
		return nil
	}

	next := r.committed.clone()
	for _, op := range ops {
		if err := next.apply(op); err != nil {
			return fmt.Errorf("commit operation %d (%s): %w", op.Seq, op.Kind, err)
		}
	}
	next.rebuildIndex()

	r.committed = next
	r.staged = next.clone()
	r.log.Clear()

	r.options.Logger.Info("committed transaction",
		"operations", len(ops),
		"entries", len(next.entries),
		"categories", len(next.categories))
	return nil
}

// Rollback discards all staged operations without side effects.
func (r *Registry) Rollback() {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.log.Len()
	r.log.Clear()
	r.staged = r.committed.clone()
	if n > 0 {
		r.options.Logger.Info("rolled back transaction", "operations", n)
	}
}

// Pending returns the number of staged, uncommitted operations.
func (r *Registry) Pending() int {
	return r.log.Len()
}

// Lookup returns a copy of the committed entry for path, or
// ErrUnknownPath.
func (r *Registry) Lookup(path string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.committed.entries[path]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}
	return entry.clone(), nil
}

// Entries returns copies of all committed entries, sorted by path.
func (r *Registry) Entries() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Entry, 0, len(r.committed.entries))
	for _, p := range sortedEntryPaths(r.committed) {
		out = append(out, r.committed.entries[p].clone())
	}
	return out
}

// Categories returns copies of all committed categories, sorted by
// name, with member paths populated from the category index.
func (r *Registry) Categories() []*Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.committed.categories))
	for n := range r.committed.categories {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]*Category, 0, len(names))
	for _, n := range names {
		c := r.committed.categories[n].clone()
		c.Members = setToSorted(r.committed.members[n])
		out = append(out, c)
	}
	return out
}

// Members returns the sorted committed member paths of a category, or
// ErrUnknownCategory.
func (r *Registry) Members(category string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.committed.categories[category]; !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	return setToSorted(r.committed.members[category]), nil
}

// Stats returns committed counts plus the number of pending operations.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byKind := make(map[EntryKind]int)
	for _, e := range r.committed.entries {
		byKind[e.Kind]++
	}
	return Stats{
		Entries:    len(r.committed.entries),
		Categories: len(r.committed.categories),
		ByKind:     byKind,
		Pending:    r.log.Len(),
	}
}

func sortedEntryPaths(s *state) []string {
	paths := make([]string, 0, len(s.entries))
	for p := range s.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
