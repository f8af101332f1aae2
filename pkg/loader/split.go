package loader

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gota/gota/dataframe"

	"smsingest/pkg/errs"
)

const opSplit = "split"

// Permutation returns a pseudo-random ordering of [0, n) fixed by seed.
func Permutation(n int, seed int64) []int {
	return rand.New(rand.NewSource(seed)).Perm(n)
}

// SplitSizes returns the test and train row counts for n rows.
// The test side is rounded up, the train side takes the remainder.
func SplitSizes(n int, testRatio float64) (nTest, nTrain int, err error) {
	if !(testRatio > 0 && testRatio < 1) {
		return 0, 0, errs.E(errs.KindInvalid, opSplit, fmt.Errorf("test size must be in (0, 1), got %v", testRatio))
	}
	nTest = int(math.Ceil(testRatio * float64(n)))
	nTrain = n - nTest
	if n == 0 || nTrain == 0 {
		return 0, 0, errs.E(errs.KindInvalid, opSplit, fmt.Errorf(
			"with n_samples=%d and test size %v the train set would be empty", n, testRatio))
	}
	return nTest, nTrain, nil
}

// TrainTestSplit splits df into train and test sets by ratio.
// Rows are drawn from Permutation(df.Nrow(), seed): the first nTest go to
// test, the rest to train, each kept in permutation order.
func TrainTestSplit(df dataframe.DataFrame, testRatio float64, seed int64) (train, test dataframe.DataFrame, err error) {
	n := df.Nrow()
	nTest, _, err := SplitSizes(n, testRatio)
	if err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, err
	}

	indices := Permutation(n, seed)
	test = df.Subset(indices[:nTest])
	if test.Err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, errs.E(errs.KindUnknown, opSplit, test.Err)
	}
	train = df.Subset(indices[nTest:])
	if train.Err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, errs.E(errs.KindUnknown, opSplit, train.Err)
	}
	return train, test, nil
}
