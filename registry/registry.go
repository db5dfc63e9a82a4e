// Package registry реализует справочники "найти или создать" с суррогатными ключами.
package registry

// ParentKey составной естественный ключ дочерней сущности: (id родителя, нормализованное имя)
type ParentKey struct {
	ParentID int
	Name     string
}

// Registry отображает естественные ключи на сущности с суррогатными id 1..N
// в порядке первого появления. Записи только добавляются и никогда не изменяются.
//
// Registry не безопасен для конкурентного использования без внешней синхронизации.
type Registry[K comparable, E any] struct {
	index    map[K]int
	entities []E
}

// New создает пустой реестр
func New[K comparable, E any]() *Registry[K, E] {
	return &Registry[K, E]{index: make(map[K]int)}
}

// GetOrCreate возвращает существующую сущность для ключа или создает новую
// build получает следующий id (текущий размер + 1); для существующего ключа не вызывается
func (r *Registry[K, E]) GetOrCreate(key K, build func(id int) E) E {
	if id, ok := r.index[key]; ok {
		return r.entities[id-1]
	}
	id := len(r.entities) + 1
	entity := build(id)
	r.entities = append(r.entities, entity)
	r.index[key] = id
	return entity
}

// Lookup возвращает сущность по ключу без создания
func (r *Registry[K, E]) Lookup(key K) (E, bool) {
	id, ok := r.index[key]
	if !ok {
		var zero E
		return zero, false
	}
	return r.entities[id-1], true
}

// ByID возвращает сущность по суррогатному id
func (r *Registry[K, E]) ByID(id int) (E, bool) {
	if id < 1 || id > len(r.entities) {
		var zero E
		return zero, false
	}
	return r.entities[id-1], true
}

// Len количество сущностей
func (r *Registry[K, E]) Len() int {
	return len(r.entities)
}

// Entities возвращает копию сущностей в порядке id
func (r *Registry[K, E]) Entities() []E {
	out := make([]E, len(r.entities))
	copy(out, r.entities)
	return out
}
