package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/dexgraph/internal/domain/entities"
	"github.com/ersonp/dexgraph/internal/infrastructure/config"
)

// setupTestStore creates an in-memory SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(config.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	err = store.EnsureSchema(context.Background())
	require.NoError(t, err)

	return store
}

// named creates an entity of kind owning a name attribute.
func named(t *testing.T, store *Store, kind entities.EntityKind, name string) *entities.Entity {
	t.Helper()
	ctx := context.Background()

	entity, err := store.AddEntity(ctx, kind)
	require.NoError(t, err)
	attr, err := store.PutAttribute(ctx, entities.AttributeName, name)
	require.NoError(t, err)
	require.NoError(t, store.AttachAttribute(ctx, entity.ID, attr.ID))
	return entity
}

func TestNewStore(t *testing.T) {
	t.Run("success with memory database", func(t *testing.T) {
		store, err := NewStore(config.SQLiteConfig{Path: ":memory:"})
		require.NoError(t, err)
		defer store.Close()
		assert.Equal(t, ":memory:", store.Path())
	})

	t.Run("creates file database directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dexgraph.db")
		store, err := NewStore(config.SQLiteConfig{Path: path})
		require.NoError(t, err)
		defer store.Close()
		require.NoError(t, store.EnsureSchema(context.Background()))
		assert.FileExists(t, path)
	})

	t.Run("error with empty path", func(t *testing.T) {
		_, err := NewStore(config.SQLiteConfig{Path: ""})
		require.Error(t, err)
	})
}

func TestStore_EnsureSchema(t *testing.T) {
	store := setupTestStore(t)

	tables := []string{"schema_types", "entities", "attributes", "entity_attributes", "relationships", "role_players"}
	for _, table := range tables {
		var count int
		err := store.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}

	var types int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM schema_types`).Scan(&types))
	assert.Equal(t, len(entities.DefaultSchema), types)
}

func TestStore_EnsureSchema_Idempotent(t *testing.T) {
	store := setupTestStore(t)

	err := store.EnsureSchema(context.Background())
	require.NoError(t, err)
}

func TestStore_FindRelationType(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	t.Run("provisioned relation", func(t *testing.T) {
		st, err := store.FindRelationType(ctx, entities.RelationEvolvesFrom)
		require.NoError(t, err)
		require.NotNil(t, st)
		assert.Equal(t, entities.KindRelation, st.Kind)
	})

	t.Run("unknown relation", func(t *testing.T) {
		st, err := store.FindRelationType(ctx, "trades-with")
		require.NoError(t, err)
		assert.Nil(t, st)
	})

	t.Run("name of another kind", func(t *testing.T) {
		st, err := store.FindRelationType(ctx, entities.RelationType(entities.EntityCreature))
		require.NoError(t, err)
		assert.Nil(t, st)
	})
}

func TestStore_PutRoleType(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	t.Run("existing role", func(t *testing.T) {
		st, err := store.PutRoleType(ctx, entities.RoleAncestor)
		require.NoError(t, err)
		assert.Equal(t, string(entities.RoleAncestor), st.Name)
	})

	t.Run("creates missing role", func(t *testing.T) {
		st, err := store.PutRoleType(ctx, "trainer")
		require.NoError(t, err)
		assert.Equal(t, entities.KindRole, st.Kind)

		again, err := store.PutRoleType(ctx, "trainer")
		require.NoError(t, err)
		assert.Equal(t, st.Name, again.Name)
	})

	t.Run("name taken by another kind", func(t *testing.T) {
		_, err := store.PutRoleType(ctx, entities.Role(entities.EntityCategory))
		require.Error(t, err)
	})
}

func TestStore_Entities(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first, err := store.AddEntity(ctx, entities.EntityCreature)
	require.NoError(t, err)
	second, err := store.AddEntity(ctx, entities.EntityCreature)
	require.NoError(t, err)
	_, err = store.AddEntity(ctx, entities.EntityCategory)
	require.NoError(t, err)

	t.Run("find by id", func(t *testing.T) {
		found, err := store.FindEntityByID(ctx, first.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, entities.EntityCreature, found.Type)
	})

	t.Run("find missing", func(t *testing.T) {
		found, err := store.FindEntityByID(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("list keeps creation order", func(t *testing.T) {
		list, err := store.ListEntities(ctx, entities.EntityCreature)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, first.ID, list[0].ID)
		assert.Equal(t, second.ID, list[1].ID)
	})

	t.Run("count by kind", func(t *testing.T) {
		n, err := store.CountEntities(ctx, entities.EntityCategory)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		_, err := store.AddEntity(ctx, "trainer")
		require.Error(t, err)
	})
}

func TestStore_Attributes(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	t.Run("value equal puts share a node", func(t *testing.T) {
		a, err := store.PutAttribute(ctx, entities.AttributeHeight, "7")
		require.NoError(t, err)
		b, err := store.PutAttribute(ctx, entities.AttributeHeight, "7")
		require.NoError(t, err)
		assert.Equal(t, a.ID, b.ID)

		c, err := store.PutAttribute(ctx, entities.AttributeWeight, "7")
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, c.ID)
	})

	t.Run("find absent", func(t *testing.T) {
		attr, err := store.FindAttribute(ctx, entities.AttributeName, "missingno")
		require.NoError(t, err)
		assert.Nil(t, attr)
	})

	t.Run("attach is idempotent", func(t *testing.T) {
		entity := named(t, store, entities.EntityCreature, "bulbasaur")
		attr, err := store.FindAttribute(ctx, entities.AttributeName, "bulbasaur")
		require.NoError(t, err)
		require.NoError(t, store.AttachAttribute(ctx, entity.ID, attr.ID))

		attrs, err := store.AttributesOf(ctx, entity.ID)
		require.NoError(t, err)
		require.Len(t, attrs, 1)
		assert.Equal(t, "bulbasaur", attrs[0].Value)
	})

	t.Run("attach to unknown entity fails", func(t *testing.T) {
		attr, err := store.PutAttribute(ctx, entities.AttributeName, "ivysaur")
		require.NoError(t, err)
		err = store.AttachAttribute(ctx, "nope", attr.ID)
		require.Error(t, err)
	})
}

func TestStore_OwnersOf(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	creature := named(t, store, entities.EntityCreature, "grass")
	category := named(t, store, entities.EntityCategory, "grass")
	later := named(t, store, entities.EntityCreature, "grass")

	attr, err := store.FindAttribute(ctx, entities.AttributeName, "grass")
	require.NoError(t, err)
	require.NotNil(t, attr)

	creatures, err := store.OwnersOf(ctx, attr.ID, entities.EntityCreature)
	require.NoError(t, err)
	require.Len(t, creatures, 2)
	assert.Equal(t, creature.ID, creatures[0].ID)
	assert.Equal(t, later.ID, creatures[1].ID)

	categories, err := store.OwnersOf(ctx, attr.ID, entities.EntityCategory)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, category.ID, categories[0].ID)
}

func TestStore_Relationships(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	ivysaur := named(t, store, entities.EntityCreature, "ivysaur")
	bulbasaur := named(t, store, entities.EntityCreature, "bulbasaur")
	grass := named(t, store, entities.EntityCategory, "grass")

	evo, err := store.AddRelationship(ctx, entities.RelationEvolvesFrom, []entities.RolePlayer{
		{Role: entities.RoleDescendant, EntityID: ivysaur.ID},
		{Role: entities.RoleAncestor, EntityID: bulbasaur.ID},
	})
	require.NoError(t, err)

	_, err = store.AddRelationship(ctx, entities.RelationHasCategory, []entities.RolePlayer{
		{Role: entities.RoleBearer, EntityID: ivysaur.ID},
		{Role: entities.RoleCategorizedType, EntityID: grass.ID},
	})
	require.NoError(t, err)

	t.Run("by type", func(t *testing.T) {
		rels, err := store.FindRelationshipsByType(ctx, entities.RelationEvolvesFrom)
		require.NoError(t, err)
		require.Len(t, rels, 1)
		assert.Equal(t, evo.ID, rels[0].ID)

		ancestor, ok := rels[0].Player(entities.RoleAncestor)
		require.True(t, ok)
		assert.Equal(t, bulbasaur.ID, ancestor)
	})

	t.Run("by player", func(t *testing.T) {
		rels, err := store.FindRelationshipsByPlayer(ctx, ivysaur.ID)
		require.NoError(t, err)
		require.Len(t, rels, 2)
		for _, rel := range rels {
			assert.Len(t, rel.Players, 2)
		}
	})

	t.Run("count", func(t *testing.T) {
		n, err := store.CountRelationships(ctx, entities.RelationHasCategory)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("requires players", func(t *testing.T) {
		_, err := store.AddRelationship(ctx, entities.RelationEvolvesFrom, nil)
		require.Error(t, err)
	})

	t.Run("unknown player rolls back", func(t *testing.T) {
		_, err := store.AddRelationship(ctx, entities.RelationEvolvesFrom, []entities.RolePlayer{
			{Role: entities.RoleDescendant, EntityID: ivysaur.ID},
			{Role: entities.RoleAncestor, EntityID: "nope"},
		})
		require.Error(t, err)

		n, err := store.CountRelationships(ctx, entities.RelationEvolvesFrom)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestStore_ErrorPropagation(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk I/O error")

	newMock := func(t *testing.T) (*Store, sqlmock.Sqlmock) {
		t.Helper()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		return NewStoreFromDB(db, "mock.db"), mock
	}

	t.Run("add entity", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec("INSERT INTO entities").WillReturnError(boom)

		_, err := store.AddEntity(ctx, entities.EntityCreature)
		require.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("put attribute", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec("INSERT OR IGNORE INTO attributes").WillReturnError(boom)

		_, err := store.PutAttribute(ctx, entities.AttributeName, "pikachu")
		require.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("relationship binding rolls back", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO relationships").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO role_players").WillReturnError(boom)
		mock.ExpectRollback()

		_, err := store.AddRelationship(ctx, entities.RelationEvolvesFrom, []entities.RolePlayer{
			{Role: entities.RoleDescendant, EntityID: "a"},
		})
		require.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectQuery("SELECT COUNT").WillReturnError(boom)

		_, err := store.CountEntities(ctx, entities.EntityCreature)
		require.ErrorIs(t, err, boom)
	})
}
