package allocation

import (
	"sort"

	"github.com/shopspring/decimal"
)

const monthsPerYear = 12

// usageEpsilon absorbs float drift when summing rule percentages.
const usageEpsilon = 1e-9

var (
	toleranceCeiling = decimal.NewFromFloat(1.02)
	toleranceTarget  = decimal.NewFromFloat(0.98)
)

// Engine computes budget recommendations from a rule catalog.
type Engine struct {
	catalog *Catalog
}

// NewEngine creates an Engine. A nil catalog uses DefaultCatalog.
func NewEngine(catalog *Catalog) *Engine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Engine{catalog: catalog}
}

// Catalog returns the rules the engine allocates with.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// bucketAmounts is the income assigned to each bucket, before rounding.
type bucketAmounts struct {
	essential decimal.Decimal
	lifestyle decimal.Decimal
	savings   decimal.Decimal
}

func (a bucketAmounts) of(b Bucket) decimal.Decimal {
	switch b {
	case BucketEssential:
		return a.essential
	case BucketLifestyle:
		return a.lifestyle
	case BucketSavings:
		return a.savings
	}
	return decimal.Zero
}

// part is the slice of a line item drawn from one bucket.
type part struct {
	bucket Bucket
	amount decimal.Decimal
}

type draft struct {
	category    string
	subcategory string
	bucket      Bucket
	parts       []part
}

func (d draft) total() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range d.parts {
		sum = sum.Add(p.amount)
	}
	return sum
}

// usage is the cumulative share of each bucket claimed by the categories seen so far.
type usage struct {
	essential float64
	lifestyle float64
	savings   float64
}

func (u usage) add(r Rule) usage {
	switch r.Bucket {
	case BucketEssential:
		u.essential += r.Percentage
	case BucketLifestyle:
		u.lifestyle += r.Percentage
	case BucketSavings:
		u.savings += r.Percentage
	case BucketMixed:
		u.essential += r.EssentialPercentage
		u.lifestyle += r.LifestylePercentage
	}
	return u
}

func (u usage) of(b Bucket) float64 {
	switch b {
	case BucketEssential:
		return u.essential
	case BucketLifestyle:
		return u.lifestyle
	case BucketSavings:
		return u.savings
	}
	return 0
}

// accumulator is threaded through the category fold.
type accumulator struct {
	drafts []draft
	usage  usage
}

// Allocate runs the allocation for a request.
func (e *Engine) Allocate(req Request) (*Result, error) {
	if req.Income <= 0 {
		return nil, ErrNonPositiveIncome
	}
	if req.Income > MaxIncome {
		return nil, ErrIncomeTooLarge
	}

	split, err := ResolveSplit(req.Priority, req.Profile)
	if err != nil {
		return nil, err
	}

	income := decimal.NewFromInt(req.Income)
	amounts := bucketAmounts{
		essential: income.Mul(decimal.NewFromFloat(split.Essential)),
		lifestyle: income.Mul(decimal.NewFromFloat(split.Lifestyle)),
		savings:   income.Mul(decimal.NewFromFloat(split.Savings)),
	}

	acc := accumulator{}
	for _, rule := range e.catalog.rules {
		choice, ok := req.Selection[rule.Category]
		if !ok || !choice.Selected {
			continue
		}
		acc = acc.fold(rule, choice, amounts)
	}

	drafts, corrections := acc.scaleBuckets()

	exact := make([]decimal.Decimal, len(drafts))
	for i, d := range drafts {
		exact[i] = d.total()
	}

	var values []int64
	switch req.Variant.Policy() {
	case FitTolerance:
		values = roundAll(exact)
		if c, ok := fitTolerance(values, req.Income); ok {
			corrections = append(corrections, c)
		}
	default:
		values = fitExact(exact, req.Income)
	}

	items := make([]LineItem, len(drafts))
	var total int64
	for i, d := range drafts {
		item := LineItem{
			Category:    d.category,
			Subcategory: d.subcategory,
			Bucket:      d.bucket,
			IsEssential: d.bucket == BucketEssential,
		}
		if req.Variant == VariantAnnual {
			item.AnnualBudget = values[i]
			item.MonthlyBudget = decimal.NewFromInt(values[i]).Div(decimal.NewFromInt(monthsPerYear)).Round(0).IntPart()
		} else {
			item.MonthlyBudget = values[i]
			item.AnnualBudget = values[i] * monthsPerYear
		}
		total += values[i]
		items[i] = item
	}

	return &Result{
		LineItems: items,
		Breakdown: Breakdown{
			Essential: amounts.essential.Round(0).IntPart(),
			Lifestyle: amounts.lifestyle.Round(0).IntPart(),
			Savings:   amounts.savings.Round(0).IntPart(),
		},
		Percentages:    split,
		TotalAllocated: total,
		Corrections:    corrections,
	}, nil
}

// fold adds the line items for one selected category and records its bucket usage.
// Categories with no selected subcategory contribute nothing.
func (a accumulator) fold(rule Rule, choice CategoryChoice, amounts bucketAmounts) accumulator {
	subs := selectedSubcategories(rule, choice)
	if len(subs) == 0 {
		return a
	}

	var unweighted int
	for _, name := range subs {
		if _, ok := rule.weightOf(name); !ok {
			unweighted++
		}
	}

	weights := make([]float64, len(subs))
	var sum float64
	for i, name := range subs {
		if w, ok := rule.weightOf(name); ok {
			weights[i] = w.Value()
		} else {
			weights[i] = 1.0 / float64(unweighted)
		}
		sum += weights[i]
	}
	if sum <= 0 {
		for i := range weights {
			weights[i] = 1.0 / float64(len(subs))
		}
		sum = 1
	}

	var categoryParts []part
	if rule.Bucket == BucketMixed {
		categoryParts = []part{
			{BucketEssential, amounts.essential.Mul(decimal.NewFromFloat(rule.EssentialPercentage))},
			{BucketLifestyle, amounts.lifestyle.Mul(decimal.NewFromFloat(rule.LifestylePercentage))},
		}
	} else {
		categoryParts = []part{
			{rule.Bucket, amounts.of(rule.Bucket).Mul(decimal.NewFromFloat(rule.Percentage))},
		}
	}
	categoryTotal := decimal.Zero
	for _, p := range categoryParts {
		categoryTotal = categoryTotal.Add(p.amount)
	}

	for i, name := range subs {
		share := decimal.NewFromFloat(weights[i] / sum)
		bucket := rule.Bucket
		if w, ok := rule.weightOf(name); ok {
			bucket = w.bucketFor(rule.Bucket)
		}

		d := draft{category: rule.Category, subcategory: name, bucket: bucket}
		if bucket == BucketMixed {
			for _, p := range categoryParts {
				d.parts = append(d.parts, part{p.bucket, p.amount.Mul(share)})
			}
		} else {
			d.parts = []part{{bucket, categoryTotal.Mul(share)}}
		}
		a.drafts = append(a.drafts, d)
	}

	a.usage = a.usage.add(rule)
	return a
}

// scaleBuckets shrinks every part of an over-used bucket by 1/usage so the bucket
// never exceeds its allocated amount.
func (a accumulator) scaleBuckets() ([]draft, []Correction) {
	var corrections []Correction
	factors := map[Bucket]decimal.Decimal{}
	for _, b := range []Bucket{BucketEssential, BucketLifestyle, BucketSavings} {
		u := a.usage.of(b)
		if u <= 1.0+usageEpsilon {
			continue
		}
		factors[b] = decimal.NewFromInt(1).Div(decimal.NewFromFloat(u))
		corrections = append(corrections, Correction{Stage: StageBucket, Bucket: b, Usage: u, Factor: 1.0 / u})
	}
	if len(factors) == 0 {
		return a.drafts, nil
	}

	out := make([]draft, len(a.drafts))
	for i, d := range a.drafts {
		scaled := d
		scaled.parts = make([]part, len(d.parts))
		for j, p := range d.parts {
			if f, ok := factors[p.bucket]; ok {
				p.amount = p.amount.Mul(f)
			}
			scaled.parts[j] = p
		}
		out[i] = scaled
	}
	return out, corrections
}

// selectedSubcategories returns configured subcategories in rule order followed by
// unconfigured ones in name order.
func selectedSubcategories(rule Rule, choice CategoryChoice) []string {
	var subs []string
	known := make(map[string]bool, len(rule.Subcategories))
	for _, sw := range rule.Subcategories {
		known[sw.Name] = true
		if choice.Subcategories[sw.Name] {
			subs = append(subs, sw.Name)
		}
	}

	var extra []string
	for name, selected := range choice.Subcategories {
		if selected && !known[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(subs, extra...)
}

// fitExact rescales amounts so the rounded results sum to exactly target. Units
// left over after flooring go to the largest fractional remainders. When the
// rescaling ratio rounds high the floors can overshoot; the excess is taken back
// from the smallest remainders that still hold a unit.
func fitExact(amounts []decimal.Decimal, target int64) []int64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	if !total.IsPositive() {
		return roundAll(amounts)
	}

	ratio := decimal.NewFromInt(target).Div(total)
	values := make([]int64, len(amounts))
	remainders := make([]decimal.Decimal, len(amounts))
	var assigned int64
	for i, a := range amounts {
		scaled := a.Mul(ratio)
		floor := scaled.Floor()
		values[i] = floor.IntPart()
		remainders[i] = scaled.Sub(floor)
		assigned += values[i]
	}

	order := make([]int, len(amounts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]].GreaterThan(remainders[order[b]])
	})
	for k := 0; assigned < target && len(order) > 0; k++ {
		values[order[k%len(order)]]++
		assigned++
	}
	for k := len(order) - 1; assigned > target; k-- {
		if k < 0 {
			k = len(order) - 1
		}
		if i := order[k]; values[i] > 0 {
			values[i]--
			assigned--
		}
	}
	return values
}

func roundAll(amounts []decimal.Decimal) []int64 {
	values := make([]int64, len(amounts))
	for i, a := range amounts {
		values[i] = a.Round(0).IntPart()
	}
	return values
}

// fitTolerance scales values down to 98% of income when they exceed 102% of it.
func fitTolerance(values []int64, income int64) (Correction, bool) {
	total := sum(values)
	incomeDec := decimal.NewFromInt(income)
	if total <= 0 || decimal.NewFromInt(total).LessThanOrEqual(incomeDec.Mul(toleranceCeiling)) {
		return Correction{}, false
	}

	factor := incomeDec.Mul(toleranceTarget).Div(decimal.NewFromInt(total))
	for i, v := range values {
		values[i] = decimal.NewFromInt(v).Mul(factor).Floor().IntPart()
	}
	return Correction{
		Stage:  StageTolerance,
		Usage:  float64(total) / float64(income),
		Factor: factor.InexactFloat64(),
	}, true
}

func sum(values []int64) int64 {
	var total int64
	for _, v := range values {
		total += v
	}
	return total
}
