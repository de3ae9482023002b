/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"strconv"
	"strings"
)

/*
ParseRange converts phrases including:

	":"   = full range, from 0 to max
	"end" = last index, from max-1 to max
	"N"   = single index, from N to N+1
	"2:N" = range, from 2 to N
	":N"  = range, from 0 to N
	"N:"  = range, from N to max

into the half open window [i1, i2).
*/
func ParseRange(dim string, max int) (i1, i2 int, err error) {
	switch dim = strings.TrimSpace(dim); dim {
	case "end":
		return max - 1, max, nil
	case ":", "":
		return 0, max, nil
	}
	splits := strings.Split(dim, ":")
	if len(splits) > 2 {
		return 0, 0, fmt.Errorf("bad range [%s]", dim)
	}
	if splits[0] != "" {
		if i1, err = strconv.Atoi(splits[0]); err != nil {
			return 0, 0, fmt.Errorf("bad range start [%s]", dim)
		}
	}
	if len(splits) == 1 {
		return i1, i1 + 1, nil
	}
	i2 = max
	if splits[1] != "" {
		if i2, err = strconv.Atoi(splits[1]); err != nil {
			return 0, 0, fmt.Errorf("bad range end [%s]", dim)
		}
	}
	if i2 == i1 {
		i2 = i1 + 1
	}
	if i2 < i1 {
		return 0, 0, fmt.Errorf("range [%s] ends before it starts", dim)
	}
	return
}
