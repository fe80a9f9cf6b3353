package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestConstraintPredicates(t *testing.T) {
	uniqueErr := &pq.Error{Code: "23505", Constraint: "suppliers_tenant_id_code_key"}
	fkErr := &pq.Error{Code: "23503", Constraint: "products_supplier_id_fkey"}
	checkErr := &pq.Error{Code: "23514", Constraint: "suppliers_rating_check"}

	t.Run("unique violations", func(t *testing.T) {
		assert.True(t, IsUniqueViolation(uniqueErr))
		assert.False(t, IsUniqueViolation(fkErr))
		assert.False(t, IsUniqueViolation(checkErr))
		assert.False(t, IsUniqueViolation(nil))
	})

	t.Run("foreign key violations", func(t *testing.T) {
		assert.True(t, IsForeignKeyViolation(fkErr))
		assert.False(t, IsForeignKeyViolation(uniqueErr))
	})

	t.Run("check violations", func(t *testing.T) {
		assert.True(t, IsCheckViolation(checkErr))
		assert.False(t, IsCheckViolation(fkErr))
	})

	t.Run("any constraint violation", func(t *testing.T) {
		assert.True(t, IsConstraintViolation(uniqueErr))
		assert.True(t, IsConstraintViolation(fkErr))
		assert.True(t, IsConstraintViolation(checkErr))
		assert.False(t, IsConstraintViolation(errors.New("connection refused")))
		assert.False(t, IsConstraintViolation(nil))
	})

	t.Run("wrapped driver errors still match", func(t *testing.T) {
		wrapped := fmt.Errorf("inserting supplier: %w", uniqueErr)
		assert.True(t, IsUniqueViolation(wrapped))
		assert.True(t, IsConstraintViolation(wrapped))
	})
}
