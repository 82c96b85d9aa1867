package queryir

// Predicate is a filter condition over one record.
//
// This is a sealed interface; only types in this package implement it, so
// backends can switch over it exhaustively.
type Predicate interface {
	predicateNode()
}

// In holds when the column value equals any of Values.
//
// Values hold storage representations (int64, string or bool). An In with
// no values matches nothing; Filter.Predicate never produces one.
type In struct {
	Column Column
	Values []any
}

func (In) predicateNode() {}

// Equals holds when the column value equals Value.
type Equals struct {
	Column Column
	Value  any
}

func (Equals) predicateNode() {}

// Search holds when Term is a case-sensitive substring of any of Columns.
type Search struct {
	Columns []Column
	Term    string
}

func (Search) predicateNode() {}

// And holds when all Predicates hold. An empty And always holds.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Predicate lowers a normalised filter to the predicate IR. Options that are
// absent or "all" contribute nothing.
func (f Filter) Predicate() And {
	var preds []Predicate

	addInts := func(col Column, vals []int64) {
		if len(vals) == 0 {
			return
		}
		vs := make([]any, len(vals))
		for i, v := range vals {
			vs[i] = v
		}
		preds = append(preds, In{Column: col, Values: vs})
	}
	addStrings := func(col Column, vals []string) {
		if len(vals) == 0 {
			return
		}
		vs := make([]any, len(vals))
		for i, v := range vals {
			vs[i] = v
		}
		preds = append(preds, In{Column: col, Values: vs})
	}

	addInts(ColID, f.IDs)
	addInts(ColUserID, f.UserIDs)
	addInts(ColInviterID, f.InviterIDs)
	addStrings(ColInviteeEmail, f.InviteeEmails)
	addStrings(ColComponentName, f.ComponentNames)
	addStrings(ColComponentAction, f.ComponentActions)
	addInts(ColItemID, f.ItemIDs)
	addInts(ColSecondaryItemID, f.SecondaryItemIDs)

	if f.Type != "" {
		preds = append(preds, Equals{Column: ColType, Value: string(f.Type)})
	}

	switch f.InviteSent {
	case SentDraft:
		preds = append(preds, Equals{Column: ColInviteSent, Value: false})
	case SentSent:
		preds = append(preds, Equals{Column: ColInviteSent, Value: true})
	}

	switch f.Accepted {
	case AcceptedPending:
		preds = append(preds, Equals{Column: ColAccepted, Value: false})
	case AcceptedAccepted:
		preds = append(preds, Equals{Column: ColAccepted, Value: true})
	}

	if f.SearchTerms != "" {
		preds = append(preds, Search{
			Columns: []Column{ColComponentName, ColComponentAction},
			Term:    f.SearchTerms,
		})
	}

	return And{Predicates: preds}
}
