package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/sotafujii/pokeml/pkg/errors"
)

// SaveModel gob-encodes a trained estimator to a file. Estimators with
// unexported state implement gob.GobEncoder to take part.
func SaveModel(model interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "pokeml: SaveModel: creating %s", filename)
	}
	defer file.Close()

	return SaveModelToWriter(model, file)
}

// LoadModel restores an estimator previously written by SaveModel. The
// model argument must be a pointer to the matching type.
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "pokeml: LoadModel: opening %s", filename)
	}
	defer file.Close()

	return LoadModelFromReader(model, file)
}

// SaveModelToWriter gob-encodes an estimator to w.
func SaveModelToWriter(model interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(model); err != nil {
		return errors.Wrap(err, "pokeml: SaveModelToWriter: encoding model")
	}
	return nil
}

// LoadModelFromReader gob-decodes an estimator from r.
func LoadModelFromReader(model interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(model); err != nil {
		return errors.Wrap(err, "pokeml: LoadModelFromReader: decoding model")
	}
	return nil
}
