package ogm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ConstraintSpec is one schema statement derived from a registered kind.
type ConstraintSpec struct {
	// Kind is the owning kind name.
	Kind string
	// Property is the constrained property.
	Property string
	// Unique distinguishes uniqueness constraints from plain indexes.
	Unique bool
	// Statement is the DDL text, idempotent via IF NOT EXISTS.
	Statement string
}

func escapeLabelDDL(label string) string {
	return "`" + strings.ReplaceAll(label, "`", "``") + "`"
}

// ConstraintSpecs derives the uniqueness constraints and indexes implied by
// every registered kind, in registration order. Edge kinds contribute
// nothing: their properties live on relationships.
func (r *Registry) ConstraintSpecs() []ConstraintSpec {
	var out []ConstraintSpec
	for _, k := range r.Kinds() {
		if k.Edge() {
			continue
		}
		label := k.labels[0]
		for _, p := range k.Properties() {
			switch {
			case p.Unique:
				out = append(out, ConstraintSpec{
					Kind:     k.Name(),
					Property: p.Name,
					Unique:   true,
					Statement: fmt.Sprintf(
						"CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
						constraintName(k.Name(), p.Name, "unique"),
						escapeLabelDDL(label), escapeLabelDDL(p.Name)),
				})
			case p.Indexed:
				out = append(out, ConstraintSpec{
					Kind:     k.Name(),
					Property: p.Name,
					Statement: fmt.Sprintf(
						"CREATE INDEX %s IF NOT EXISTS FOR (n:%s) ON (n.%s)",
						constraintName(k.Name(), p.Name, "index"),
						escapeLabelDDL(label), escapeLabelDDL(p.Name)),
				})
			}
		}
	}
	return out
}

// constraintName builds a deterministic, DDL-safe schema object name.
func constraintName(kind, property, suffix string) string {
	clean := func(s string) string {
		var b strings.Builder
		for _, r := range strings.ToLower(s) {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			} else {
				b.WriteByte('_')
			}
		}
		return b.String()
	}
	return clean(kind) + "_" + clean(property) + "_" + suffix
}

// InstallLabels applies every derived constraint and index. Statements are
// idempotent, so re-running after adding kinds is safe. Each statement runs
// in its own transaction: schema commands cannot share one with data writes.
func (db *Database) InstallLabels(ctx context.Context) error {
	for _, spec := range db.registry.ConstraintSpecs() {
		err := db.Write(ctx, func(tx Tx) error {
			_, err := tx.Run(ctx, spec.Statement, nil)
			return err
		})
		if err != nil {
			return fmt.Errorf("install %s.%s: %w", spec.Kind, spec.Property, err)
		}
		db.log.Info("installed schema statement",
			zap.String("kind", spec.Kind),
			zap.String("property", spec.Property),
			zap.Bool("unique", spec.Unique))
	}
	return nil
}
