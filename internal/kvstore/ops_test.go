package kvstore

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cartful/internal/bus"
)

func TestAdd_AppendsToEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "list")

	n, err := s.Add(ctx, "milk", true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.Add(ctx, "eggs", true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.Get(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"milk", "eggs"}, got)
}

func TestAdd_AllowsDuplicatesByDefault(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "dups")

	_, err := s.Add(ctx, "milk", true)
	require.NoError(t, err)
	n, err := s.Add(ctx, "milk", true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAdd_RejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "nodups")

	item := map[string]any{"store": "Auchan", "item": "Milk"}
	_, err := s.Add(ctx, item, false)
	require.NoError(t, err)

	_, err = s.Add(ctx, map[string]any{"item": "Milk", "store": "Auchan"}, false)
	require.Error(t, err, "key order must not defeat duplicate detection")
	assert.True(t, IsDuplicateError(err))

	got, err := s.Get(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestAdd_FailsOnNonArray(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "scalar")

	require.NoError(t, s.Set(ctx, "not an array"))
	_, err := s.Add(ctx, "x", true)
	require.Error(t, err)

	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrCodeNotArray, se.Code)
}

func TestAppendItem(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "nested")

	require.NoError(t, s.Set(ctx, map[string]any{
		"a": map[string]any{"b": map[string]any{"c": []any{"first"}}},
	}))

	n, err := s.AppendItem(ctx, "a.b.c", "second")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.Get(ctx, nil)
	require.NoError(t, err)
	want := map[string]any{
		"a": map[string]any{"b": map[string]any{"c": []any{"first", "second"}}},
	}
	assert.Empty(t, cmp.Diff(want, got))
}

func TestAppendItem_MissingIntermediate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "nested")

	require.NoError(t, s.Set(ctx, map[string]any{"a": map[string]any{}}))

	_, err := s.AppendItem(ctx, "a.b.c", "x")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestAppendItem_TargetNotArray(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "nested")

	require.NoError(t, s.Set(ctx, map[string]any{"a": map[string]any{"b": "scalar"}}))

	_, err := s.AppendItem(ctx, "a.b", "x")
	require.Error(t, err)

	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrCodeNotArray, se.Code)
}

func TestEditItem_SetsValue(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "edit")

	require.NoError(t, s.Set(ctx, map[string]any{"settings": map[string]any{"theme": "light"}}))
	require.NoError(t, s.EditItem(ctx, "settings.theme", "dark", false))

	got, err := s.Get(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"settings": map[string]any{"theme": "dark"}}, got)
}

func TestEditItem_EmitsOldAndNew(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "edit")

	require.NoError(t, s.Set(ctx, map[string]any{"price": 2.5}))

	var events []bus.Event
	s.Subscribe(func(e bus.Event) { events = append(events, e) })

	require.NoError(t, s.EditItem(ctx, "price", 3.0, false))

	require.Len(t, events, 1)
	require.Equal(t, bus.EventEdit, events[0].Type)
	change, ok := events[0].Data.(bus.EditChange)
	require.True(t, ok)
	assert.Equal(t, "price", change.Path)
	assert.Equal(t, 2.5, change.OldValue)
	assert.Equal(t, 3.0, change.NewValue)
}

func TestEditItem_CreatePath(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "edit")

	// Missing intermediates fail without createPath.
	err := s.EditItem(ctx, "a.b.c", 1, false)
	require.Error(t, err)

	// With createPath, intermediates are created as empty objects.
	require.NoError(t, s.EditItem(ctx, "a.b.c", 1, true))

	got, err := s.Get(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": map[string]any{"c": 1.0}}}, got)
}

func TestEditItem_ArrayIndex(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "edit")

	require.NoError(t, s.Set(ctx, map[string]any{"tags": []any{"a", "b"}}))
	require.NoError(t, s.EditItem(ctx, "tags.1", "c", false))

	got, err := s.Get(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"tags": []any{"a", "c"}}, got)

	err = s.EditItem(ctx, "tags.9", "x", false)
	require.Error(t, err, "out-of-range index must fail")
}

func TestDeleteItem_MissingKeyIsNoOp(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "del")

	require.NoError(t, s.Set(ctx, map[string]any{"keep": 1}))

	var events []bus.Event
	s.Subscribe(func(e bus.Event) { events = append(events, e) })

	removed, err := s.DeleteItem(ctx, "gone")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Empty(t, events, "no-op delete must not emit")

	got, err := s.Get(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"keep": 1.0}, got, "stored data must be unchanged")
}

func TestDeleteItem_RemovesKey(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "del")

	require.NoError(t, s.Set(ctx, map[string]any{"a": 1, "b": 2}))

	var events []bus.Event
	s.Subscribe(func(e bus.Event) { events = append(events, e) })

	removed, err := s.DeleteItem(ctx, "a")
	require.NoError(t, err)
	assert.True(t, removed)

	got, err := s.Get(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"b": 2.0}, got)

	require.Len(t, events, 1)
	assert.Equal(t, bus.EventDeleteItem, events[0].Type)
}

func TestDeleteItem_ArraySplice(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "del")

	require.NoError(t, s.Set(ctx, map[string]any{"ids": []any{"a", "b", "c"}}))

	removed, err := s.DeleteItem(ctx, "ids.1")
	require.NoError(t, err)
	assert.True(t, removed)

	got, err := s.Get(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ids": []any{"a", "c"}}, got)
}

func TestDeleteItem_ArrayIndexErrors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "del")

	require.NoError(t, s.Set(ctx, map[string]any{"ids": []any{"a"}}))

	_, err := s.DeleteItem(ctx, "ids.notanumber")
	require.Error(t, err)

	_, err = s.DeleteItem(ctx, "ids.5")
	require.Error(t, err, "out-of-bounds splice must fail")
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "update")

	got, err := s.Update(ctx, []any{}, func(cur any) (any, error) {
		return append(cur.([]any), "added"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"added"}, got)

	stored, err := s.Get(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"added"}, stored)
}

func TestMerge_Shallow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "merge")

	require.NoError(t, s.Set(ctx, map[string]any{"a": 0, "b": 2}))

	got, err := s.Merge(ctx, map[string]any{"a": 1}, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1.0, "b": 2.0}, got)
}

func TestMerge_Deep(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "merge")

	require.NoError(t, s.Set(ctx, map[string]any{"a": map[string]any{"y": 2}}))

	got, err := s.Merge(ctx, map[string]any{"a": map[string]any{"x": 1}}, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"x": 1.0, "y": 2.0}}, got)
}

func TestMerge_ShallowReplacesNested(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "merge")

	require.NoError(t, s.Set(ctx, map[string]any{"a": map[string]any{"y": 2}}))

	got, err := s.Merge(ctx, map[string]any{"a": map[string]any{"x": 1}}, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"x": 1.0}}, got,
		"shallow merge replaces nested objects wholesale")
}

func TestMerge_DeepReplacesArrays(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "merge")

	require.NoError(t, s.Set(ctx, map[string]any{"tags": []any{"a", "b"}}))

	got, err := s.Merge(ctx, map[string]any{"tags": []any{"c"}}, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"tags": []any{"c"}}, got,
		"arrays are replaced, not merged")
}

func TestMerge_RejectsNonObjects(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "merge")

	_, err := s.Merge(ctx, []any{"not", "object"}, false)
	require.Error(t, err)
	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrCodeNotObject, se.Code)

	require.NoError(t, s.Set(ctx, "scalar"))
	_, err = s.Merge(ctx, map[string]any{"a": 1}, false)
	require.Error(t, err)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrCodeNotObject, se.Code)
}
