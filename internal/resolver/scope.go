package resolver

import "github.com/waterfallconf/waterfall/internal/source"

// Waterfall builds the plain precedence chain over the five standard
// sources: external application file, environment, process properties,
// in-artifact application resource, in-artifact common resource.
func Waterfall(external, env, props, app, common source.Source) Chain {
	return New(At(external), At(env), At(props), At(app), At(common))
}

// Scope builds the effective chain for the given active profile. With no
// profile it is simply the full waterfall.
//
// With a profile the rules are:
//   - if the external file defines a subtree at the profile name, that
//     subtree becomes the base, falling back to environment then properties;
//   - otherwise the base is environment falling back to properties — the
//     in-artifact layers are not part of the base in this branch;
//   - if the in-artifact application resource also defines the profile
//     subtree, it is appended beneath whichever base was chosen;
//   - the common resource is always the final fallback.
//
// Keys of the external file that live outside the profile subtree are
// unreachable once a matching profile is active: scoping re-roots the
// lookup, it does not widen it.
func Scope(profile string, external, env, props, app, common source.Source) Chain {
	if profile == "" {
		return Waterfall(external, env, props, app, common)
	}

	var layers []Layer
	if external.HasSubtree(profile) {
		layers = append(layers, Rerooted(external, profile), At(env), At(props))
	} else {
		layers = append(layers, At(env), At(props))
	}

	if app.HasSubtree(profile) {
		layers = append(layers, Rerooted(app, profile))
	}

	layers = append(layers, At(common))
	return New(layers...)
}
