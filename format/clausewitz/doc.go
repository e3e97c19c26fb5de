// Package clausewitz reads and writes the brace-delimited key=value text used
// by Paradox game saves and configuration files.
//
// The format in brief:
//
//	# comment to end of line
//	name="United Nations of Earth"
//	capital=12
//	flag=yes
//	date=2200.01.01
//	country={
//		0={ energy=100.5 }
//	}
//	technology="tech_lasers"
//	technology="tech_fusion"   # repeated keys become a document.Sequence
//	player={ { name="Ruler" country=0 } }   # keyless blocks are anonymous
//	color={ 12 34 56 }                      # keyless scalars are items
//
// Parse builds a *document.Document. Marshal writes one back; text that
// Parse accepts in ModeFull re-parses to an equal document after one round.
//
// For very large saves, ModeShallow (or ModeAuto) keeps top-level blocks as
// document.Unparsed spans. Resolve parses them concurrently afterwards, or
// ParseSpan can be called for just the spans that are needed.
package clausewitz
