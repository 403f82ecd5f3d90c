package analyzer

import "strings"

// stopWords are excluded from common words and themes.
var stopWords = toSet(`
a about above after again against all also am an and any are aren't as at be because been before being
below between both but by can can't cannot could couldn't did didn't do does doesn't doing don't down
during each even ever every few for from further get gets got had hadn't has hasn't have haven't having
he he'd he'll he's her here here's hers herself him himself his how how's however i i'd i'll i'm i've if
in into is isn't it it's its itself just let's like make made many may me more most much must mustn't my
myself need new no nor not now of off on once one only or other ought our ours ourselves out over own
really same say said see she she'd she'll she's should shouldn't so some still such than that that's the
their theirs them themselves then there there's these they they'd they'll they're they've thing things
think this those though through time to today too under until up us use used very via want was wasn't we
we'd we'll we're we've well were weren't what what's when when's where where's which while who who's
whom why why's will with won't would wouldn't yet you you'd you'll you're you've your yours yourself
yourselves going know way day back good great right still year years people`)

func toSet(words string) map[string]bool {
	out := map[string]bool{}
	for _, w := range strings.Fields(words) {
		out[w] = true
	}
	return out
}
