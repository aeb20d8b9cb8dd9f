package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mealmarkt/ops-manager/internal/dependency"
	"github.com/mealmarkt/ops-manager/internal/entity"
	gerr "github.com/mealmarkt/ops-manager/internal/errors"
)

type segmentStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Segment() dependency.Segment {
	return &segmentStore{MYSQLStore: ms}
}

// ruleFields whitelists the client columns a dynamic segment rule may
// reference. Rule fields never reach the SQL text directly; an unknown
// field is rejected before compilation.
var ruleFields = map[string]string{
	"name":         "name",
	"email":        "email",
	"mobile":       "mobile",
	"total_orders": "total_orders",
	"total_spend":  "total_spend",
	"unsubscribed": "unsubscribed",
}

// escapeLike neutralizes LIKE metacharacters in a rule value so a
// literal % or _ matches itself instead of acting as a wildcard.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// compileRules turns ANDed field/operator/value triples into a WHERE
// fragment with named parameters. The operator switch is exhaustive over
// the closed RuleOperator set.
func compileRules(rules []entity.SegmentRule) (string, map[string]any, error) {
	conds := make([]string, 0, len(rules))
	params := make(map[string]any, len(rules))

	for i, r := range rules {
		col, ok := ruleFields[r.Field]
		if !ok {
			return "", nil, fmt.Errorf("%w: %s", gerr.ErrUnknownRuleField, r.Field)
		}
		p := fmt.Sprintf("ruleValue%d", i)
		switch r.Operator {
		case entity.RuleEquals:
			conds = append(conds, fmt.Sprintf("%s = :%s", col, p))
			params[p] = r.Value
		case entity.RuleGreaterThan:
			conds = append(conds, fmt.Sprintf("%s > :%s", col, p))
			params[p] = r.Value
		case entity.RuleLessThan:
			conds = append(conds, fmt.Sprintf("%s < :%s", col, p))
			params[p] = r.Value
		case entity.RuleContains:
			conds = append(conds, fmt.Sprintf("%s LIKE :%s", col, p))
			params[p] = "%" + escapeLike(r.Value) + "%"
		default:
			return "", nil, fmt.Errorf("unknown rule operator: %s", r.Operator)
		}
	}

	if len(conds) == 0 {
		return "", params, nil
	}
	return "WHERE " + strings.Join(conds, " AND "), params, nil
}

func (ms *MYSQLStore) AddSegment(ctx context.Context, s *entity.SegmentFull) (int, error) {
	var segmentID int
	err := ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		id, err := ExecNamedLastId(ctx, rep.DB(), `
		INSERT INTO segments (name, kind, client_count, description, created_at)
		VALUES (:name, :kind, 0, :description, NOW())`, map[string]any{
			"name":        s.Name,
			"kind":        s.Kind,
			"description": s.Description,
		})
		if err != nil {
			return fmt.Errorf("can't insert segment: %w", err)
		}
		segmentID = id
		return insertSegmentRules(ctx, rep, id, s.Rules)
	})
	if err != nil {
		return 0, err
	}
	return segmentID, nil
}

func (ms *MYSQLStore) UpdateSegment(ctx context.Context, id int, s *entity.SegmentFull) error {
	return ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		err := ExecNamed(ctx, rep.DB(), `
		UPDATE segments SET name = :name, kind = :kind, description = :description
		WHERE id = :id`, map[string]any{
			"id":          id,
			"name":        s.Name,
			"kind":        s.Kind,
			"description": s.Description,
		})
		if err != nil {
			return fmt.Errorf("can't update segment %d: %w", id, err)
		}
		err = ExecNamed(ctx, rep.DB(), `DELETE FROM segment_rules WHERE segment_id = :id`, map[string]any{"id": id})
		if err != nil {
			return fmt.Errorf("can't clear segment rules: %w", err)
		}
		return insertSegmentRules(ctx, rep, id, s.Rules)
	})
}

func insertSegmentRules(ctx context.Context, rep dependency.Repository, segmentID int, rules []entity.SegmentRule) error {
	for _, r := range rules {
		if _, ok := ruleFields[r.Field]; !ok {
			return fmt.Errorf("%w: %s", gerr.ErrUnknownRuleField, r.Field)
		}
		err := ExecNamed(ctx, rep.DB(), `
		INSERT INTO segment_rules (segment_id, field, operator, value)
		VALUES (:segmentId, :field, :operator, :value)`, map[string]any{
			"segmentId": segmentID,
			"field":     r.Field,
			"operator":  r.Operator,
			"value":     r.Value,
		})
		if err != nil {
			return fmt.Errorf("can't insert segment rule: %w", err)
		}
	}
	return nil
}

func (ms *MYSQLStore) GetSegmentByID(ctx context.Context, id int) (*entity.SegmentFull, error) {
	seg, err := QueryNamedOne[entity.Segment](ctx, ms.DB(), `
	SELECT id, name, kind, client_count, description, created_at
	FROM segments WHERE id = :id`, map[string]any{"id": id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.ErrSegmentNotFound
		}
		return nil, fmt.Errorf("can't fetch segment %d: %w", id, err)
	}

	rules, err := QueryListNamed[entity.SegmentRule](ctx, ms.DB(), `
	SELECT id, segment_id, field, operator, value
	FROM segment_rules WHERE segment_id = :id`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("can't fetch segment rules: %w", err)
	}

	return &entity.SegmentFull{Segment: seg, Rules: rules}, nil
}

func (ms *MYSQLStore) ListSegments(ctx context.Context) ([]entity.Segment, error) {
	segments, err := QueryListNamed[entity.Segment](ctx, ms.DB(), `
	SELECT id, name, kind, client_count, description, created_at
	FROM segments ORDER BY created_at DESC`, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't fetch segments: %w", err)
	}
	return segments, nil
}

func (ms *MYSQLStore) DeleteSegment(ctx context.Context, id int) error {
	return ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		for _, q := range []string{
			`DELETE FROM segment_rules WHERE segment_id = :id`,
			`DELETE FROM segment_members WHERE segment_id = :id`,
			`DELETE FROM segments WHERE id = :id`,
		} {
			if err := ExecNamed(ctx, rep.DB(), q, map[string]any{"id": id}); err != nil {
				return fmt.Errorf("can't delete segment %d: %w", id, err)
			}
		}
		return nil
	})
}

// SetStaticMembers replaces the membership list of a static segment.
func (ms *MYSQLStore) SetStaticMembers(ctx context.Context, segmentID int, clientIDs []int64) error {
	return ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		err := ExecNamed(ctx, rep.DB(), `DELETE FROM segment_members WHERE segment_id = :id`,
			map[string]any{"id": segmentID})
		if err != nil {
			return fmt.Errorf("can't clear segment members: %w", err)
		}
		rows := make([]map[string]any, 0, len(clientIDs))
		for _, cid := range clientIDs {
			rows = append(rows, map[string]any{"segment_id": segmentID, "hyperzod_id": cid})
		}
		if err := BulkInsert(ctx, rep.DB(), "segment_members", []string{"segment_id", "hyperzod_id"}, rows); err != nil {
			return fmt.Errorf("can't insert segment members: %w", err)
		}
		return nil
	})
}

func (ms *MYSQLStore) ResolveSegmentClients(ctx context.Context, s *entity.SegmentFull) ([]entity.Client, error) {
	switch s.Kind {
	case entity.SegmentKindStatic:
		clients, err := QueryListNamed[entity.Client](ctx, ms.DB(), fmt.Sprintf(`
		SELECT %s FROM clients
		WHERE hyperzod_id IN (SELECT hyperzod_id FROM segment_members WHERE segment_id = :segmentId)`,
			clientColumns), map[string]any{"segmentId": s.ID})
		if err != nil {
			return nil, fmt.Errorf("can't resolve static segment %d: %w", s.ID, err)
		}
		return clients, nil
	case entity.SegmentKindDynamic:
		where, params, err := compileRules(s.Rules)
		if err != nil {
			return nil, err
		}
		clients, err := QueryListNamed[entity.Client](ctx, ms.DB(),
			fmt.Sprintf(`SELECT %s FROM clients %s`, clientColumns, where), params)
		if err != nil {
			return nil, fmt.Errorf("can't resolve dynamic segment %d: %w", s.ID, err)
		}
		return clients, nil
	default:
		return nil, fmt.Errorf("unknown segment kind: %s", s.Kind)
	}
}

// RefreshSegmentCount recomputes the cached client_count. The stored value
// is an estimate, not live.
func (ms *MYSQLStore) RefreshSegmentCount(ctx context.Context, id int) (int, error) {
	seg, err := ms.GetSegmentByID(ctx, id)
	if err != nil {
		return 0, err
	}
	clients, err := ms.ResolveSegmentClients(ctx, seg)
	if err != nil {
		return 0, err
	}
	count := len(clients)
	err = ExecNamed(ctx, ms.DB(), `UPDATE segments SET client_count = :count WHERE id = :id`,
		map[string]any{"count": count, "id": id})
	if err != nil {
		return 0, fmt.Errorf("can't update segment count: %w", err)
	}
	return count, nil
}
