// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/staranto/respcache/internal/cache"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

// ExpiresValidator accepts <digits><s|m|h|d>.
func ExpiresValidator(value any) error {
	if _, ok := cache.ParseExpires(value.(string)); !ok {
		return fmt.Errorf("%q is not a valid expiry, use a number followed by s, m, h or d", value)
	}
	return nil
}

// CategoryValidator rejects categories that would leave the cache root. "*"
// is allowed and means every category.
func CategoryValidator(value any) error {
	s := value.(string)
	if s == allCategories {
		return nil
	}
	_, err := cache.CleanCategory(s)
	return err
}
