package retry

// Action is a function to be performed in a retriable manner.
type Action func() error

// Retry executes the action until it succeeds or one of the strategies
// declines another attempt. It returns the number of attempts made.
//
// Strategies run in order, so those that sleep belong last.
func Retry(action Action, strategies ...Strategy) (uint, error) {
	for attempts := uint(1); ; attempts++ {
		err := action()
		if err == nil {
			return attempts, nil
		}

		for _, strategy := range strategies {
			if !strategy(attempts, err) {
				return attempts, err
			}
		}
	}
}
