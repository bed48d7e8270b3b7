// Package rank 对特征表按 ranker_id 分组打分并组内排序。
package rank

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/rushteam/flightrank/core"
	"github.com/rushteam/flightrank/frame"
	"github.com/rushteam/flightrank/model"
	"github.com/rushteam/flightrank/pkg/utils"
)

const defaultBatchSize = 4096

// Ranker 使用 RankModel 给每个候选打分。
// Features 为模型输入列（数值列）；BatchSize 控制单次 RPC 的行数。
type Ranker struct {
	Model     model.RankModel
	Features  []string
	BatchSize int
}

// Score 按行顺序返回分数，与表行一一对应。
func (r *Ranker) Score(ctx context.Context, t *frame.Table) ([]float64, error) {
	if r.Model == nil {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput, "rank: model is nil")
	}
	cols := make([]*frame.Column, len(r.Features))
	for i, name := range r.Features {
		c, ok := t.Col(name)
		if !ok {
			return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeMissingColumn,
				fmt.Sprintf("rank: feature column %q not found", name))
		}
		if !c.Kind.Numeric() {
			return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
				fmt.Sprintf("rank: feature column %q is %s, encode it first", name, c.Kind))
		}
		cols[i] = c
	}

	batch := r.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	n := t.Len()
	scores := make([]float64, 0, n)
	for from := 0; from < n; from += batch {
		to := min(from+batch, n)
		rows := make([]map[string]float64, 0, to-from)
		for i := from; i < to; i++ {
			rows = append(rows, rowFeatures(cols, i))
		}
		s, err := model.PredictAll(ctx, r.Model, rows)
		if err != nil {
			return nil, fmt.Errorf("rank: score rows [%d,%d): %w", from, to, err)
		}
		scores = append(scores, s...)
	}
	return scores, nil
}

// Rank 打分后按分组返回候选：分组按首次出现顺序，组内按分数降序稳定排序（NaN 在最后）。
// labelCol 为空或不存在时 Item.Label 为 0。
func (r *Ranker) Rank(ctx context.Context, t *frame.Table, idCol, groupCol, labelCol string) ([]*core.Item, error) {
	scores, err := r.Score(ctx, t)
	if err != nil {
		return nil, err
	}
	ids := t.StringCol(idCol)
	groups := frame.GroupBy(t.StringCol(groupCol))
	labels := t.FloatCol(labelCol)

	cols := make([]*frame.Column, 0, len(r.Features))
	for _, name := range r.Features {
		c, _ := t.Col(name)
		cols = append(cols, c)
	}

	items := make([]*core.Item, 0, t.Len())
	for g, rows := range groups.Rows {
		ranked := make([]*core.Item, 0, len(rows))
		for _, i := range rows {
			id, _ := ids.Str(i)
			it := core.NewItem(id, groups.Keys[g])
			it.Score = scores[i]
			if !labels.IsNull(i) {
				it.Label = labels.Nums[i]
			}
			it.Features = rowFeatures(cols, i)
			it.PutLabel("rank_model", utils.Label{Value: r.Model.Name(), Source: "rank"})
			ranked = append(ranked, it)
		}
		sort.SliceStable(ranked, func(a, b int) bool {
			return scoreBefore(ranked[a].Score, ranked[b].Score)
		})
		for pos, it := range ranked {
			it.PutLabel("rank_position", utils.Label{Value: strconv.Itoa(pos + 1), Source: "rank"})
		}
		items = append(items, ranked...)
	}
	return items, nil
}

func rowFeatures(cols []*frame.Column, i int) map[string]float64 {
	f := make(map[string]float64, len(cols))
	for _, c := range cols {
		if c.IsNull(i) {
			continue
		}
		f[c.Name] = c.Nums[i]
	}
	return f
}

func scoreBefore(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}
