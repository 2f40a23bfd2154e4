package nlp

import (
	"strings"

	"github.com/cognicore/phrasemine/pkg/phrasemine"
)

// FromPenn maps a Penn Treebank tag to a coarse POS.
func FromPenn(tag string) phrasemine.POS {
	switch tag {
	case "JJ", "JJR", "JJS":
		return phrasemine.Adj
	case "NN", "NNS":
		return phrasemine.Noun
	case "NNP", "NNPS":
		return phrasemine.PropNoun
	case "DT", "PDT", "WDT", "PRP$", "WP$":
		return phrasemine.Det
	case "PRP", "WP", "EX":
		return phrasemine.Pron
	case "MD":
		return phrasemine.Aux
	case "RB", "RBR", "RBS", "WRB":
		return phrasemine.Adv
	case "IN", "TO":
		return phrasemine.Adp
	case "CD":
		return phrasemine.Num
	case "CC":
		return phrasemine.CConj
	case "RP", "POS":
		return phrasemine.Part
	case ".", ",", ":", "(", ")", "``", "''", "\"", "#", "$", "-LRB-", "-RRB-", "HYPH", "NFP":
		return phrasemine.Punct
	}
	if strings.HasPrefix(tag, "VB") {
		return phrasemine.Verb
	}
	return phrasemine.Other
}
