// Package stage adapts dsp/kernel's derivation formulas into the closed
// set of stage kinds the pipeline can run: movingAverage, meanAbsoluteValue,
// rms, variance, zScoreNormalize, and rectify. Stages are built from a
// type-id string plus a JSON params document via Registry, not by
// implementing an open-ended interface — new behavior is added by adding a
// new Kind and stage type, never by subclassing an existing one.
package stage
