package allocation

// Weight is a subcategory's share of its category's budget. It is either a Plain
// weight, which inherits the category's bucket, or a Tagged weight, which moves
// the subcategory into a bucket of its own.
type Weight interface {
	Value() float64
	bucketFor(category Bucket) Bucket
}

// Plain is a weight that inherits the category bucket.
type Plain float64

// Value returns the raw weight.
func (w Plain) Value() float64 { return float64(w) }

func (w Plain) bucketFor(category Bucket) Bucket { return category }

// Tagged is a weight that overrides the category bucket.
type Tagged struct {
	Bucket Bucket
	Weight float64
}

// Value returns the raw weight.
func (w Tagged) Value() float64 { return w.Weight }

func (w Tagged) bucketFor(Bucket) Bucket { return w.Bucket }

// SubcategoryWeight pairs a subcategory name with its configured weight.
type SubcategoryWeight struct {
	Name   string
	Weight Weight
}

// Rule describes how a category takes its share of the bucket amounts.
// Percentage applies to single-bucket categories; mixed categories use
// EssentialPercentage and LifestylePercentage.
type Rule struct {
	Category            string
	Bucket              Bucket
	Percentage          float64
	EssentialPercentage float64
	LifestylePercentage float64
	Subcategories       []SubcategoryWeight
}

// weightOf returns the configured weight for a subcategory, if any.
func (r Rule) weightOf(name string) (Weight, bool) {
	for _, sw := range r.Subcategories {
		if sw.Name == name {
			return sw.Weight, true
		}
	}
	return nil, false
}

// Catalog is an immutable, ordered set of rules.
type Catalog struct {
	rules []Rule
	index map[string]int
}

// NewCatalog builds a catalog. Later rules with a duplicate name replace earlier ones.
func NewCatalog(rules []Rule) *Catalog {
	c := &Catalog{index: make(map[string]int, len(rules))}
	for _, r := range rules {
		if i, ok := c.index[r.Category]; ok {
			c.rules[i] = r
			continue
		}
		c.index[r.Category] = len(c.rules)
		c.rules = append(c.rules, r)
	}
	return c
}

// Rules returns a copy of the rules in catalog order.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Lookup returns the rule for a category.
func (c *Catalog) Lookup(category string) (Rule, bool) {
	i, ok := c.index[category]
	if !ok {
		return Rule{}, false
	}
	return c.rules[i], true
}

var defaultCatalog = NewCatalog([]Rule{
	{
		Category: "Housing", Bucket: BucketEssential, Percentage: 0.75,
		Subcategories: []SubcategoryWeight{
			{"Rent/Mortgage", Plain(0.70)},
			{"Home Insurance", Plain(0.10)},
			{"Maintenance", Plain(0.10)},
			{"Property Taxes", Plain(0.10)},
		},
	},
	{
		Category: "Utilities", Bucket: BucketEssential, Percentage: 0.15,
		Subcategories: []SubcategoryWeight{
			{"Electricity", Plain(0.35)},
			{"Water", Plain(0.15)},
			{"Gas", Plain(0.15)},
			{"Internet", Plain(0.20)},
			{"Phone", Plain(0.15)},
		},
	},
	{
		Category: "Food", Bucket: BucketMixed, EssentialPercentage: 0.20, LifestylePercentage: 0.15,
		Subcategories: []SubcategoryWeight{
			{"Groceries", Tagged{BucketEssential, 0.65}},
			{"Dining Out", Tagged{BucketLifestyle, 0.25}},
			{"Coffee Shops", Tagged{BucketLifestyle, 0.10}},
		},
	},
	{
		Category: "Transportation", Bucket: BucketEssential, Percentage: 0.15,
		Subcategories: []SubcategoryWeight{
			{"Car Payment", Plain(0.35)},
			{"Fuel", Plain(0.25)},
			{"Car Insurance", Plain(0.20)},
			{"Public Transit", Plain(0.10)},
			{"Vehicle Maintenance", Plain(0.10)},
		},
	},
	{
		Category: "Healthcare", Bucket: BucketEssential, Percentage: 0.10,
		Subcategories: []SubcategoryWeight{
			{"Health Insurance", Plain(0.50)},
			{"Medications", Plain(0.25)},
			{"Doctor Visits", Plain(0.25)},
		},
	},
	{
		Category: "Education", Bucket: BucketMixed, EssentialPercentage: 0.05, LifestylePercentage: 0.10,
		Subcategories: []SubcategoryWeight{
			{"Tuition", Tagged{BucketEssential, 0.50}},
			{"Books", Plain(0.20)},
			{"Online Courses", Tagged{BucketLifestyle, 0.30}},
		},
	},
	{
		Category: "Entertainment", Bucket: BucketLifestyle, Percentage: 0.25,
		Subcategories: []SubcategoryWeight{
			{"Streaming Services", Plain(0.20)},
			{"Events", Plain(0.40)},
			{"Hobbies", Plain(0.40)},
		},
	},
	{
		Category: "Shopping", Bucket: BucketLifestyle, Percentage: 0.20,
		Subcategories: []SubcategoryWeight{
			{"Clothing", Plain(0.50)},
			{"Electronics", Plain(0.30)},
			{"Household Items", Tagged{BucketEssential, 0.20}},
		},
	},
	{
		Category: "Personal Care", Bucket: BucketLifestyle, Percentage: 0.10,
		Subcategories: []SubcategoryWeight{
			{"Gym", Plain(0.50)},
			{"Haircuts", Plain(0.30)},
			{"Cosmetics", Plain(0.20)},
		},
	},
	{
		Category: "Travel", Bucket: BucketLifestyle, Percentage: 0.20,
		Subcategories: []SubcategoryWeight{
			{"Flights", Plain(0.50)},
			{"Accommodation", Plain(0.35)},
			{"Activities", Plain(0.15)},
		},
	},
	{
		Category: "Gifts & Donations", Bucket: BucketLifestyle, Percentage: 0.10,
		Subcategories: []SubcategoryWeight{
			{"Gifts", Plain(0.60)},
			{"Charity", Plain(0.40)},
		},
	},
	{
		Category: "Savings", Bucket: BucketSavings, Percentage: 0.50,
		Subcategories: []SubcategoryWeight{
			{"Emergency Fund", Plain(0.40)},
			{"Retirement", Plain(0.40)},
			{"Investments", Plain(0.20)},
		},
	},
	{
		Category: "Debt Payments", Bucket: BucketSavings, Percentage: 0.30,
		Subcategories: []SubcategoryWeight{
			{"Credit Cards", Plain(0.50)},
			{"Student Loans", Plain(0.30)},
			{"Personal Loans", Plain(0.20)},
		},
	},
	{
		Category: "Goals", Bucket: BucketSavings, Percentage: 0.20,
		Subcategories: []SubcategoryWeight{
			{"Vacation Fund", Plain(0.40)},
			{"Home Down Payment", Plain(0.40)},
			{"Major Purchases", Plain(0.20)},
		},
	},
})

// DefaultCatalog returns the built-in rule catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}
